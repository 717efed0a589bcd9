// Package api exposes the shop services over JSON HTTP with gin.
package api

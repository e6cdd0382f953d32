package http

import (
	httpSwagger "github.com/swaggo/http-swagger"
)

// MountSwagger exposes the swagger UI under the given prefix
func MountSwagger(r Router, prefix string) {
	if prefix == "" {
		prefix = "/swagger"
	}
	r.Handle(prefix+"/*", httpSwagger.Handler(
		httpSwagger.URL(prefix+"/doc.json"),
	))
}

package server

import (
	"net/http"

	"connectrpc.com/connect"
)

// ConnectService is implemented by each service to register its connect handler.
type ConnectService interface {
	RegisterHandler(interceptors ...connect.Interceptor) (string, http.Handler)
}

// Mount registers every service on mux and returns the mounted paths.
func Mount(mux *http.ServeMux, services []ConnectService, interceptors ...connect.Interceptor) []string {
	paths := make([]string, 0, len(services))
	for _, svc := range services {
		path, handler := svc.RegisterHandler(interceptors...)
		mux.Handle(path, handler)
		paths = append(paths, path)
	}
	return paths
}

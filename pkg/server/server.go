package server

import "github.com/emberstate/emberfront/internal/server"

type Server interface {
	Start(withBuilder bool) error
}

func NewServer(sourceDir, buildDir, rootDir, port, override404, configFile string, reload bool) Server {
	return server.NewServer(sourceDir, buildDir, rootDir, port, override404, configFile, reload)
}

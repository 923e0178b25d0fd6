package main

import (
	"log"
	"net"
	"net/http"

	"github.com/squarefactory/lsf-submit/api"
	"github.com/squarefactory/lsf-submit/config"
	"github.com/squarefactory/lsf-submit/executor"
)

type ServeCommand struct {
	Listen string `short:"l" long:"listen" description:"listen address, overrides the configuration"`
}

var serveCommand ServeCommand

func (x *ServeCommand) Execute(args []string) error {
	cfg, err := config.Load(globalOptions.Config)
	if err != nil {
		return err
	}
	listenAddress := cfg.ListenAddress
	if x.Listen != "" {
		listenAddress = x.Listen
	}

	lsf := cfg.NewLSF(&executor.Shell{})
	r := api.NewRouter(lsf, cfg.SubmitTimeout())

	l, err := net.Listen("tcp", listenAddress)
	if err != nil {
		return err
	}
	log.Printf("listening on %s", l.Addr())
	return http.Serve(l, r)
}

func init() {
	if _, err := parser.AddCommand("serve",
		"Run the HTTP API",
		"Serve job submissions over HTTP",
		&serveCommand); err != nil {
		log.Fatal(err)
	}
}

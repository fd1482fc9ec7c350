package main

import (
	"crypto-gate-service/assembly"
	"crypto-gate-service/conf"
	"github.com/txix-open/isp-kit/app"
	"github.com/txix-open/isp-kit/config"
	"github.com/txix-open/isp-kit/shutdown"
)

func main() {
	application, err := app.New(app.WithConfigOptions(
		config.WithExtraSource(config.NewYamlConfig(conf.Path())),
	))
	if err != nil {
		panic(err)
	}
	logger := application.Logger()

	assembly, err := assembly.NewMonitor(application)
	if err != nil {
		logger.Fatal(application.Context(), err)
	}
	runners, err := assembly.Runners()
	if err != nil {
		logger.Fatal(application.Context(), err)
	}
	application.AddRunners(runners...)
	application.AddClosers(assembly.Closers()...)

	shutdown.On(func() {
		logger.Info(application.Context(), "starting shutdown")
		application.Shutdown()
		logger.Info(application.Context(), "shutdown completed")
	})

	err = application.Run()
	if err != nil {
		application.Shutdown()
		logger.Fatal(application.Context(), err)
	}
}

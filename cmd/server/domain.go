package main

import (
	"os"

	"github.com/JaimeStill/pdf-image-server/internal/config"
	"github.com/JaimeStill/pdf-image-server/internal/document"
	"github.com/JaimeStill/pdf-image-server/internal/images"
	"github.com/JaimeStill/pdf-image-server/internal/locator"
	"github.com/JaimeStill/pdf-image-server/internal/paths"
	"github.com/JaimeStill/pdf-image-server/internal/pipeline"
)

// Domain wires the document resolution and image streaming systems.
type Domain struct {
	Resolver *paths.Resolver
	Pipeline *pipeline.Pipeline
	Images   *images.Handler
}

func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	resolver := paths.NewResolver(cfg.Documents.ResolvedRoot(), cfg.Documents.MaxSizeBytes())

	p := pipeline.New(
		document.NewPDFOpener(),
		locator.New(runtime.Logger),
		&cfg.Pipeline,
		runtime.Logger,
	)

	return &Domain{
		Resolver: resolver,
		Pipeline: p,
		Images: images.NewHandler(
			resolver,
			p,
			runtime.Logger,
			cfg.Server.WriteIdleTimeoutDuration(),
		),
	}
}

// Start logs the state of the document root once startup hooks run.
func (d *Domain) Start(runtime *Runtime) {
	runtime.Lifecycle.OnStartup(func() {
		root := d.Resolver.Root()
		if !d.Ready() {
			runtime.Logger.Error("document root unavailable", "root", root)
			return
		}
		runtime.Logger.Info("document root ready", "root", root)
	})
}

// Ready reports whether the document root is still a reachable directory.
func (d *Domain) Ready() bool {
	info, err := os.Stat(d.Resolver.Root())
	return err == nil && info.IsDir()
}

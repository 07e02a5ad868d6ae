package commands_test

import (
	"testing"

	"github.com/goliatone/go-sitebuilder/commands"
	sitescmd "github.com/goliatone/go-sitebuilder/internal/commands/sites"
	"github.com/goliatone/go-sitebuilder/internal/di"
	"github.com/goliatone/go-sitebuilder/internal/runtimeconfig"
)

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type recordingSubscription struct {
	unsubscribed bool
}

func (s *recordingSubscription) Unsubscribe() { s.unsubscribed = true }

type recordingDispatcher struct {
	handlers      []any
	subscriptions []*recordingSubscription
}

func (d *recordingDispatcher) RegisterCommand(handler any) (commands.CommandSubscription, error) {
	d.handlers = append(d.handlers, handler)
	subscription := &recordingSubscription{}
	d.subscriptions = append(d.subscriptions, subscription)
	return subscription, nil
}

func registrationConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.DSN = ""
	cfg.Assets.BaseDir = ""
	cfg.Publish.PlatformDomain = "sites.example.com"
	return cfg
}

func TestRegisterContainerCommands(t *testing.T) {
	container, err := di.NewContainer(registrationConfig())
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}

	registry := &recordingRegistry{}
	dispatcher := &recordingDispatcher{}

	result, err := commands.RegisterContainerCommands(container, commands.RegistrationOptions{
		Registry:   registry,
		Dispatcher: dispatcher,
	})
	if err != nil {
		t.Fatalf("RegisterContainerCommands() error = %v", err)
	}

	if len(result.Handlers) != 4 {
		t.Fatalf("Handlers = %d, want 4", len(result.Handlers))
	}
	if len(registry.handlers) != len(result.Handlers) {
		t.Fatalf("registry recorded %d handlers, want %d", len(registry.handlers), len(result.Handlers))
	}
	if len(dispatcher.handlers) != len(result.Handlers) {
		t.Fatalf("dispatcher recorded %d handlers, want %d", len(dispatcher.handlers), len(result.Handlers))
	}
	if len(result.Subscriptions) != len(result.Handlers) {
		t.Fatalf("Subscriptions = %d, want %d", len(result.Subscriptions), len(result.Handlers))
	}

	var exports int
	for _, handler := range result.Handlers {
		if _, ok := handler.(*sitescmd.ExportSiteHandler); ok {
			exports++
		}
	}
	if exports != 1 {
		t.Fatalf("export handlers = %d, want 1", exports)
	}

	for _, subscription := range result.Subscriptions {
		subscription.Unsubscribe()
	}
	for i, subscription := range dispatcher.subscriptions {
		if !subscription.unsubscribed {
			t.Fatalf("subscription %d was not released", i)
		}
	}
}

func TestRegisterContainerCommandsWithoutRegistrars(t *testing.T) {
	container, err := di.NewContainer(registrationConfig())
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}

	result, err := commands.RegisterContainerCommands(container, commands.RegistrationOptions{})
	if err != nil {
		t.Fatalf("RegisterContainerCommands() error = %v", err)
	}
	if len(result.Handlers) != 4 {
		t.Fatalf("Handlers = %d, want 4", len(result.Handlers))
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("Subscriptions = %d, want 0", len(result.Subscriptions))
	}
}

func TestRegisterContainerCommandsExportsDisabled(t *testing.T) {
	cfg := registrationConfig()
	cfg.Features.Exports = false

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}

	result, err := commands.RegisterContainerCommands(container, commands.RegistrationOptions{})
	if err != nil {
		t.Fatalf("RegisterContainerCommands() error = %v", err)
	}
	if len(result.Handlers) != 3 {
		t.Fatalf("Handlers = %d, want 3", len(result.Handlers))
	}
	for _, handler := range result.Handlers {
		if _, ok := handler.(*sitescmd.ExportSiteHandler); ok {
			t.Fatal("export handler registered while exports feature is disabled")
		}
	}
}

func TestRegisterContainerCommandsNilContainer(t *testing.T) {
	result, err := commands.RegisterContainerCommands(nil, commands.RegistrationOptions{})
	if err != nil {
		t.Fatalf("RegisterContainerCommands(nil) error = %v", err)
	}
	if len(result.Handlers) != 0 {
		t.Fatalf("Handlers = %d, want 0", len(result.Handlers))
	}
}

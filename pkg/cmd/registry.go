// Package cmd provides common initialization functions for command-line
// applications: persistence, event bus and action registry wiring.
package cmd

import (
	"log/slog"

	"github.com/haldesk/haldesk/pkg/actions/assign"
	"github.com/haldesk/haldesk/pkg/actions/comment"
	"github.com/haldesk/haldesk/pkg/actions/escalate"
	"github.com/haldesk/haldesk/pkg/actions/logevent"
	notifyaction "github.com/haldesk/haldesk/pkg/actions/notify"
	"github.com/haldesk/haldesk/pkg/actions/script"
	"github.com/haldesk/haldesk/pkg/actions/sendemail"
	"github.com/haldesk/haldesk/pkg/actions/sendtelegram"
	"github.com/haldesk/haldesk/pkg/actions/updatefield"
	"github.com/haldesk/haldesk/pkg/actions/updatesla"
	"github.com/haldesk/haldesk/pkg/actions/webhook"
	"github.com/haldesk/haldesk/pkg/eventbus"
	"github.com/haldesk/haldesk/pkg/notify"
	"github.com/haldesk/haldesk/pkg/persistence"
	"github.com/haldesk/haldesk/pkg/registry"
)

// Notifiers carries the delivery channels notification actions publish
// through. Unset channels fall back to an in-memory recorder so a partially
// configured deployment still transitions tickets.
type Notifiers struct {
	Email    notify.Notifier
	Telegram notify.Notifier
}

func (n Notifiers) email() notify.Notifier {
	if n.Email == nil {
		return notify.NewRecorder()
	}

	return n.Email
}

func (n Notifiers) telegram() notify.Notifier {
	if n.Telegram == nil {
		return notify.NewRecorder()
	}

	return n.Telegram
}

// NewRegistry creates a registry with every native action registered.
func NewRegistry(logger *slog.Logger, store persistence.Persistence, bus eventbus.EventBus, notifiers Notifiers) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterAction(assign.NewActionFactory(store.Tickets(), store.Users()))
	reg.RegisterAction(comment.NewActionFactory())
	reg.RegisterAction(updatefield.NewActionFactory())
	reg.RegisterAction(webhook.NewActionFactory())
	reg.RegisterAction(escalate.NewActionFactory())
	reg.RegisterAction(updatesla.NewActionFactory())
	reg.RegisterAction(script.NewActionFactory())
	reg.RegisterAction(logevent.NewActionFactory(bus))
	reg.RegisterAction(notifyaction.NewActionFactory(notifiers.email(), store.Users()))
	reg.RegisterAction(sendemail.NewActionFactory(notifiers.email(), store.Users()))
	reg.RegisterAction(sendtelegram.NewActionFactory(notifiers.telegram(), store.Users()))

	return reg
}

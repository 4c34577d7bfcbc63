// Package wa implements the adapter contract on top of whatsmeow.
package wa

import (
	"context"
	"fmt"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter"
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Factory opens whatsmeow clients against one shared credential container.
type Factory struct {
	container *sqlstore.Container
	log       zerolog.Logger
	printQR   bool
}

// NewFactory opens the credential store. dialect is "sqlite" or "pgx".
func NewFactory(ctx context.Context, dialect, dsn string, log zerolog.Logger, printQR bool) (*Factory, error) {
	storeLog := log.With().Str("component", "credentials").Logger()
	container, err := sqlstore.New(ctx, dialect, dsn, waLog.Zerolog(storeLog))
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	store.DeviceProps.Os = proto.String("WA-AKG")
	store.DeviceProps.RequireFullSync = proto.Bool(false)

	return &Factory{container: container, log: log, printQR: printQR}, nil
}

// New restores the device paired as deviceJID, or prepares a fresh one
// that will need pairing.
func (f *Factory) New(ctx context.Context, sessionID, deviceJID string) (adapter.Adapter, error) {
	var device *store.Device
	if deviceJID != "" {
		jid, err := types.ParseJID(deviceJID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", adapter.ErrInvalidJID, deviceJID)
		}
		device, err = f.container.GetDevice(ctx, jid)
		if err != nil {
			return nil, fmt.Errorf("failed to load device %s: %w", deviceJID, err)
		}
	}
	if device == nil {
		device = f.container.NewDevice()
	}

	log := f.log.With().Str("session", sessionID).Logger()
	client := whatsmeow.NewClient(device, waLog.Zerolog(log.With().Str("component", "protocol").Logger()))
	// Reconnects are driven by the session state machine.
	client.EnableAutoReconnect = false

	return newAdapter(client, log, f.printQR), nil
}

// Close releases the credential store.
func (f *Factory) Close() error {
	return f.container.Close()
}

package telegram

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Poller delivers updates via long polling, used when no webhook base URL is
// configured (typically local development).
type Poller struct {
	client  *Client
	handler *UpdateHandler
	timeout int
	log     zerolog.Logger
}

func NewPoller(client *Client, handler *UpdateHandler, timeout int, log zerolog.Logger) *Poller {
	return &Poller{client: client, handler: handler, timeout: timeout, log: log}
}

func (p *Poller) Run(ctx context.Context) {
	p.log.Info().Msg("bot polling started")
	var offset int64

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("bot polling stopped")
			return
		default:
		}

		updates, err := p.client.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.log.Warn().Err(err).Msg("getUpdates failed")
			time.Sleep(3 * time.Second)
			continue
		}

		for _, upd := range updates {
			offset = upd.UpdateID + 1
			go p.handler.Handle(ctx, upd)
		}
	}
}

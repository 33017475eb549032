package server

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/gwillem/hexapod/pkg/metric"
)

// DefaultSubject is the NATS subject commands are requested on.
const DefaultSubject = "hexapod.commands"

// NATSResponder answers command requests published on a subject. Each
// request payload is one command line, the reply is the response text.
type NATSResponder struct {
	conn       *nats.Conn
	sub        *nats.Subscription
	dispatcher Dispatcher
	metrics    *metric.Metrics
	ctx        context.Context
}

// ListenNATS connects to url and subscribes to subject. Requests are handled
// one at a time in the subscription's goroutine.
func ListenNATS(ctx context.Context, url, subject string, d Dispatcher, m *metric.Metrics) (*NATSResponder, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(url,
		nats.Name("hexapod"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.WithError(err).Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.WithField("url", c.ConnectedUrl()).Info("nats reconnected")
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to nats %s", url)
	}

	r := &NATSResponder{
		conn:       conn,
		dispatcher: d,
		metrics:    m,
		ctx:        ctx,
	}
	r.sub, err = conn.Subscribe(subject, r.handle)
	if err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "subscribe to %s", subject)
	}
	opened(m, "nats")

	log.WithField("subject", subject).Info("nats responder listening")
	return r, nil
}

func (r *NATSResponder) handle(msg *nats.Msg) {
	resp := r.answer(msg.Data)
	if msg.Reply == "" {
		log.WithField("subject", msg.Subject).Debug("request without reply subject")
		return
	}
	if err := msg.Respond(resp); err != nil {
		log.WithError(err).Warn("nats reply failed")
	}
}

func (r *NATSResponder) answer(data []byte) []byte {
	return []byte(r.dispatcher.Dispatch(r.ctx, string(data)))
}

// Close unsubscribes and drains the connection.
func (r *NATSResponder) Close() error {
	closed(r.metrics, "nats")
	if err := r.sub.Unsubscribe(); err != nil {
		log.WithError(err).Debug("unsubscribe")
	}
	return r.conn.Drain()
}

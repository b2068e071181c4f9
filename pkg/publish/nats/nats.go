package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mpapenbr/race-strategy-sim/log"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

const (
	SubjectPrefix = "rss.results"
	DefaultBucket = "rss_results"
)

var ErrNoResult = errors.New("no result for track")

type (
	Option    func(*Publisher)
	Publisher struct {
		conn   *nats.Conn
		kv     jetstream.KeyValue
		bucket string
		ttl    time.Duration
		l      *log.Logger
	}
)

func WithBucket(name string) Option {
	return func(p *Publisher) {
		p.bucket = name
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(p *Publisher) {
		p.ttl = ttl
	}
}

func WithLogger(l *log.Logger) Option {
	return func(p *Publisher) {
		p.l = l
	}
}

// New creates a publisher on conn. The latest result per track is kept in a
// jetstream key value bucket.
func New(ctx context.Context, conn *nats.Conn, opts ...Option) (*Publisher, error) {
	ret := &Publisher{
		conn:   conn,
		bucket: DefaultBucket,
		ttl:    24 * time.Hour,
		l:      log.Default().Named("nats"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, err
	}
	ret.kv, err = js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: ret.bucket,
		TTL:    ret.ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("setup key value bucket %s: %w", ret.bucket, err)
	}
	return ret, nil
}

// Connect dials url with the settings used by the command line tools.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("race-strategy-sim"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second))
}

func (p *Publisher) Publish(ctx context.Context, outcome *model.RaceOutcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(Subject(outcome.TrackName), data); err != nil {
		return err
	}
	if _, err := p.kv.Put(ctx, Key(outcome.TrackName), data); err != nil {
		return err
	}
	p.l.Debug("published result",
		log.String("track", outcome.TrackName),
		log.String("id", outcome.ID.String()))
	return nil
}

// Latest returns the last published result for track.
func (p *Publisher) Latest(ctx context.Context, track string) (*model.RaceOutcome, error) {
	kve, err := p.kv.Get(ctx, Key(track))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNoResult
		}
		return nil, err
	}
	return Decode(kve.Value())
}

// Subscribe calls fn for every result published on any track until ctx is done.
//
//nolint:whitespace // editor/linter issue
func (p *Publisher) Subscribe(
	ctx context.Context,
	fn func(*model.RaceOutcome),
) error {
	sub, err := p.conn.Subscribe(SubjectPrefix+".>", func(msg *nats.Msg) {
		outcome, err := Decode(msg.Data)
		if err != nil {
			p.l.Warn("skipping invalid message",
				log.String("subject", msg.Subject), log.ErrorField(err))
			return
		}
		fn(outcome)
	})
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		//nolint:errcheck // best effort
		sub.Unsubscribe()
	}()
	return nil
}

func (p *Publisher) Close() {
	p.conn.Close()
}

func Decode(data []byte) (*model.RaceOutcome, error) {
	var ret model.RaceOutcome
	if err := json.Unmarshal(data, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

var invalidTokenChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func token(name string) string {
	t := invalidTokenChars.ReplaceAllString(strings.TrimSpace(name), "_")
	if t == "" {
		return "unknown"
	}
	return strings.ToLower(t)
}

// Subject returns the subject results for track are published on.
func Subject(track string) string {
	return SubjectPrefix + "." + token(track)
}

// Key returns the bucket key holding the latest result for track.
func Key(track string) string {
	return "latest." + token(track)
}

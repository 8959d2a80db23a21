// Package notify publishes ThingManager and RuleEngine lifecycle events onto
// NATS, grounded on the teacher's events.Subscriber connection pattern: if
// NATS is unreachable at startup, the Bus disables itself and every publish
// becomes a no-op rather than failing the caller. Publishing is never on the
// blocking path of a ThingManager/RuleEngine operation: Notifier methods
// have no return value precisely so a notification-bus hiccup never backs
// up the core loop.
package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/nymea/nymea-sub004/internal/logger"
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/rules"
)

// Config holds the NATS connection parameters.
type Config struct {
	URL      string
	User     string
	Password string
}

// Bus is the NATS-backed implementation of things.Notifier and
// rules.Notifier.
type Bus struct {
	conn    *nats.Conn
	enabled bool
}

// Connect dials NATS per cfg. An empty URL or a failed connection yields a
// disabled Bus and a logged warning; the core runs fine without a
// notification bus; it just means nothing outside the process hears about
// state changes.
func Connect(cfg Config) *Bus {
	if cfg.URL == "" {
		logger.Notify().Warn().Msg("NATS URL not configured, notification bus disabled")
		return &Bus{}
	}

	opts := []nats.Option{
		nats.Name("hubcore"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Notify().Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Notify().Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Notify().Warn().Err(err).Msg("NATS error")
		}),
	}
	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		logger.Notify().Warn().Err(err).Str("url", cfg.URL).Msg("failed to connect to NATS, notification bus disabled")
		return &Bus{}
	}

	logger.Notify().Info().Str("url", conn.ConnectedUrl()).Msg("connected to NATS")
	return &Bus{conn: conn, enabled: true}
}

// Close closes the connection without draining it.
func (b *Bus) Close() {
	if !b.enabled {
		return
	}
	b.conn.Close()
}

func (b *Bus) publish(subject string, v interface{}) {
	if !b.enabled {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Notify().Error().Err(err).Str("subject", subject).Msg("failed to marshal event")
		return
	}
	if err := b.conn.Publish(subject, data); err != nil {
		logger.Notify().Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}

func paramsToStringMap(p model.ParamValues) map[string]interface{} {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(p))
	for id, v := range p {
		out[id.String()] = v
	}
	return out
}

// ThingAdded implements things.Notifier.
func (b *Bus) ThingAdded(t model.Thing) {
	b.publish(SubjectThingAdded, ThingAddedEvent{
		EventID: uuid.NewString(), Timestamp: time.Now(),
		ThingID: t.ID.String(), ThingClassID: t.ThingClassID.String(), Name: t.Name,
	})
}

// ThingRemoved implements things.Notifier.
func (b *Bus) ThingRemoved(id model.ID) {
	b.publish(SubjectThingRemoved, ThingRemovedEvent{
		EventID: uuid.NewString(), Timestamp: time.Now(), ThingID: id.String(),
	})
}

// ThingChanged implements things.Notifier.
func (b *Bus) ThingChanged(t model.Thing) {
	b.publish(SubjectThingChanged, ThingChangedEvent{
		EventID: uuid.NewString(), Timestamp: time.Now(), ThingID: t.ID.String(), Name: t.Name,
	})
}

// ThingSettingChanged implements things.Notifier.
func (b *Bus) ThingSettingChanged(thingID, paramTypeID model.ID, value interface{}) {
	b.publish(SubjectThingSettingChanged, ThingSettingChangedEvent{
		EventID: uuid.NewString(), Timestamp: time.Now(),
		ThingID: thingID.String(), ParamTypeID: paramTypeID.String(), Value: value,
	})
}

// StateChanged implements things.Notifier.
func (b *Bus) StateChanged(thingID, stateTypeID model.ID, value interface{}) {
	b.publish(SubjectStateChanged, StateChangedEvent{
		EventID: uuid.NewString(), Timestamp: time.Now(),
		ThingID: thingID.String(), StateTypeID: stateTypeID.String(), Value: value,
	})
}

// EventTriggered implements things.Notifier.
func (b *Bus) EventTriggered(ev model.Event) {
	b.publish(SubjectEventTriggered, EventTriggeredEvent{
		EventID: uuid.NewString(), Timestamp: time.Now(),
		ThingID: ev.ThingID.String(), EventTypeID: ev.EventTypeID.String(), Params: paramsToStringMap(ev.Params),
	})
}

// RuleAdded implements rules.Notifier.
func (b *Bus) RuleAdded(r rules.Rule) {
	b.publish(SubjectRuleAdded, RuleAddedEvent{
		EventID: uuid.NewString(), Timestamp: time.Now(), RuleID: r.ID.String(), Name: r.Name,
	})
}

// RuleRemoved implements rules.Notifier.
func (b *Bus) RuleRemoved(id model.ID) {
	b.publish(SubjectRuleRemoved, RuleRemovedEvent{
		EventID: uuid.NewString(), Timestamp: time.Now(), RuleID: id.String(),
	})
}

// RuleConfigurationChanged implements rules.Notifier.
func (b *Bus) RuleConfigurationChanged(r rules.Rule) {
	b.publish(SubjectRuleConfigurationChanged, RuleConfigurationChangedEvent{
		EventID: uuid.NewString(), Timestamp: time.Now(), RuleID: r.ID.String(),
	})
}

// RuleActiveChanged implements rules.Notifier.
func (b *Bus) RuleActiveChanged(id model.ID, active bool) {
	b.publish(SubjectRuleActiveChanged, RuleActiveChangedEvent{
		EventID: uuid.NewString(), Timestamp: time.Now(), RuleID: id.String(), Active: active,
	})
}

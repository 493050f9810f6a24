package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"lecturehall/internal/core"
	"lecturehall/internal/domain"
)

// Publisher is the relay's fan-out surface. Directory events go to every
// connected client; board/chat/count events may be scoped to one
// lecture's participants depending on relay configuration.
type Publisher interface {
	BroadcastAll(v any)
	BroadcastLecture(key domain.BuildingKey, v any)
}

// registryPublisher fans marshalled events out over the registry and
// applies the backpressure policy to slow consumers.
type registryPublisher struct {
	registry *Registry
	policy   Policy
}

func NewPublisher(registry *Registry, policy Policy) Publisher {
	return &registryPublisher{registry: registry, policy: policy}
}

func (p *registryPublisher) BroadcastAll(v any) {
	frame, ok := p.marshal(v)
	if !ok {
		return
	}
	p.deliver(p.registry.All(), frame)
}

func (p *registryPublisher) BroadcastLecture(key domain.BuildingKey, v any) {
	frame, ok := p.marshal(v)
	if !ok {
		return
	}
	p.deliver(p.registry.MembersOfLecture(key), frame)
}

func (p *registryPublisher) marshal(v any) (core.Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.publisher").Msg("marshal event")
		return nil, false
	}
	return b, true
}

func (p *registryPublisher) deliver(targets []regSnap, frame core.Frame) {
	res := core.PublishResult{}
	for _, snap := range targets {
		if err := snap.Session.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, snap.SID)
			continue
		}
		res.SentTo++
	}
	if len(res.Dropped) > 0 {
		log.Debug().Str("module", "app.publisher").Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("publish result")
	}
	if p.policy == nil {
		return
	}
	for _, sid := range res.Dropped {
		if p.policy.OnBackpressure(sid) == KickMember {
			p.registry.Cancel(sid)
		}
	}
}

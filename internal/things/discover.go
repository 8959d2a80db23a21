package things

import (
	"time"

	"github.com/nymea/nymea-sub004/internal/asyncop"
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/paramvalidator"
	"github.com/nymea/nymea-sub004/internal/status"
)

// DiscoveryResult is what a discovery operation resolves to: the descriptors
// the plugin found, cached under their own id until consumed by
// AddDiscoveredThing or until they expire.
type DiscoveryResult struct {
	Descriptors []model.ThingDescriptor
}

// DiscoverThings starts an asynchronous discovery against thingClassId,
// validating params against the class's discoveryParamTypes first.
func (m *Manager) DiscoverThings(thingClassID model.ID, params model.ParamValues) (model.ID, <-chan asyncop.Result, status.Code) {
	class, ok := m.types.ThingClass(thingClassID)
	if !ok {
		return model.NilID, nil, status.ThingClassNotFound
	}
	if !class.SupportsCreateMethod(model.CreateMethodDiscovery) {
		return model.NilID, nil, status.CreationMethodNotSupported
	}
	validated, verr := paramvalidator.Validate(class.DiscoveryParamTypes, params, paramvalidator.SourceUser)
	if verr != nil {
		return model.NilID, nil, verr.Code
	}

	opID := model.NewID()
	ch := m.ops.Begin(asyncop.KindDiscovery, opID, asyncop.DefaultTimeout(asyncop.KindDiscovery), func() {
		m.ops.TimeoutNow(asyncop.KindDiscovery, opID)
	})
	if err := m.plugins.Discover(opID, class.PluginID, thingClassID, validated); err != nil {
		m.ops.Complete(asyncop.KindDiscovery, opID, status.HardwareFailure, nil)
		return opID, ch, status.Async
	}
	return opID, ch, status.Async
}

// OnDiscoveryFinished is PluginHost's callback once discovery completes.
// Found descriptors are cached under their own id for descriptorTTL past
// this call.
func (m *Manager) OnDiscoveryFinished(opID model.ID, code status.Code, descriptors []model.ThingDescriptor) {
	now := time.Now()
	for _, d := range descriptors {
		d.CreatedAt = now
		m.descriptors[d.ID] = descriptorEntry{descriptor: d, expiresAt: now.Add(descriptorTTL)}
	}
	m.ops.Complete(asyncop.KindDiscovery, opID, code, DiscoveryResult{Descriptors: descriptors})
}

// OnTick drops any cached ThingDescriptor past its TTL. Wired to
// TimeManager's per-second tick (posted through the core loop like every
// other Manager mutation) so a descriptor consumed or discarded per spec.md
// §4.4 ("stored … until consumed or a timeout elapses") actually expires
// instead of lingering for the life of the process.
func (m *Manager) OnTick(now time.Time) {
	for id, e := range m.descriptors {
		if now.After(e.expiresAt) {
			delete(m.descriptors, id)
		}
	}
}

package pluginhost

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/nymea/nymea-sub004/internal/pluginhost/builtinplugins/mock"

	"github.com/nymea/nymea-sub004/internal/loop"
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

type fakeTypeLoader struct {
	loaded []model.ID
}

func (f *fakeTypeLoader) LoadPlugin(pluginID model.ID, raw []byte) (model.Plugin, error) {
	f.loaded = append(f.loaded, pluginID)
	return model.Plugin{ID: pluginID, Name: "mocklamp"}, nil
}

type fakeSink struct {
	done          chan struct{}
	setupFinished []status.Code
}

func (f *fakeSink) OnEventEmitted(thingID, eventTypeID model.ID, params model.ParamValues) {}
func (f *fakeSink) OnStateChanged(thingID, stateTypeID model.ID, value interface{})        {}
func (f *fakeSink) OnAutoThingAppeared(pluginID model.ID, d model.ThingDescriptor)          {}
func (f *fakeSink) OnAutoThingDisappeared(thingID model.ID)                                {}
func (f *fakeSink) OnDiscoveryFinished(opID model.ID, code status.Code, descriptors []model.ThingDescriptor) {
}
func (f *fakeSink) OnSetupFinished(opID, thingID model.ID, code status.Code, displayMessage string) {
	f.setupFinished = append(f.setupFinished, code)
	f.done <- struct{}{}
}
func (f *fakeSink) OnPairingStarted(txID model.ID, oAuthURL string)                          {}
func (f *fakeSink) OnPairingFinished(opID model.ID, code status.Code)                        {}
func (f *fakeSink) OnActionFinished(opID model.ID, code status.Code, displayMessage string)  {}
func (f *fakeSink) OnBrowseFinished(opID model.ID, code status.Code, result model.BrowseResult) {
}
func (f *fakeSink) OnBrowserItemFinished(opID model.ID, code status.Code, item model.BrowserItem) {
}
func (f *fakeSink) OnExecuteBrowserItemFinished(opID model.ID, code status.Code, displayMessage string) {
}
func (f *fakeSink) OnExecuteBrowserItemActionFinished(opID model.ID, code status.Code, displayMessage string) {
}

type fakeConfigStore struct{}

func (f *fakeConfigStore) SavePluginConfig(pluginID model.ID, values model.ParamValues) error {
	return nil
}
func (f *fakeConfigStore) LoadPluginConfig(pluginID model.ID) (model.ParamValues, error) {
	return nil, nil
}

func TestLoadDirLoadsBuiltinPluginAndRoutesSetup(t *testing.T) {
	l := loop.New(8)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go l.Run(ctx)

	types := &fakeTypeLoader{}
	sink := &fakeSink{done: make(chan struct{}, 1)}
	h := NewHost(types, sink, &fakeConfigStore{}, l, Version{Major: 1, Minor: 0}, []string{"../../plugins"}, "@every 1h")
	require.NoError(t, h.Start())
	t.Cleanup(h.Stop)

	require.Len(t, types.loaded, 1)

	h.mu.Lock()
	pluginID, ok := h.byName["mocklamp"]
	h.mu.Unlock()
	require.True(t, ok)

	opID := model.NewID()
	require.NoError(t, h.SetupThing(opID, pluginID, model.Thing{ID: model.NewID()}))

	select {
	case <-sink.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for setupFinished callback")
	}
	require.Equal(t, []status.Code{status.NoError}, sink.setupFinished)
}

func TestVersionCompatibility(t *testing.T) {
	require.True(t, Compatible(Version{1, 3}, Version{1, 2}))
	require.True(t, Compatible(Version{1, 3}, Version{1, 3}))
	require.False(t, Compatible(Version{1, 3}, Version{1, 4}))
	require.False(t, Compatible(Version{2, 0}, Version{1, 0}))
}

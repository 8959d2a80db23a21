package asyncop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

func TestCompleteDeliversResult(t *testing.T) {
	tr := New()
	id := model.NewID()
	ch := tr.Begin(KindAction, id, time.Second, nil)

	ok := tr.Complete(KindAction, id, status.NoError, "payload")
	require.True(t, ok)

	res := <-ch
	assert.Equal(t, status.NoError, res.Code)
	assert.Equal(t, "payload", res.Payload)
}

func TestCompleteUnknownOpReturnsFalse(t *testing.T) {
	tr := New()
	assert.False(t, tr.Complete(KindAction, model.NewID(), status.NoError, nil))
}

func TestTimeoutNowDeliversTimeout(t *testing.T) {
	tr := New()
	id := model.NewID()
	ch := tr.Begin(KindDiscovery, id, time.Hour, nil)

	tr.TimeoutNow(KindDiscovery, id)
	res := <-ch
	assert.Equal(t, status.Timeout, res.Code)
}

func TestCompleteAfterTimeoutIsDropped(t *testing.T) {
	tr := New()
	id := model.NewID()
	tr.Begin(KindAction, id, time.Hour, nil)

	tr.TimeoutNow(KindAction, id)
	assert.False(t, tr.Complete(KindAction, id, status.NoError, nil))
}

func TestPending(t *testing.T) {
	tr := New()
	id := model.NewID()
	assert.False(t, tr.Pending(KindBrowse, id))
	tr.Begin(KindBrowse, id, time.Hour, nil)
	assert.True(t, tr.Pending(KindBrowse, id))
	tr.Complete(KindBrowse, id, status.NoError, nil)
	assert.False(t, tr.Pending(KindBrowse, id))
}

func TestDefaultTimeouts(t *testing.T) {
	assert.Equal(t, 30*time.Second, DefaultTimeout(KindDiscovery))
	assert.Equal(t, 10*time.Minute, DefaultTimeout(KindPairing))
	assert.Equal(t, 30*time.Second, DefaultTimeout(KindAction))
	assert.Equal(t, 30*time.Second, DefaultTimeout(KindBrowse))
}

package becs

import (
	"bytes"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct {
	X, Y float64
}

type velocity struct {
	DX, DY float64
}

type health struct {
	Current, Max int
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewBuilder().Init()
}

func TestCreateAssignsDenseIndices(t *testing.T) {
	m := newTestManager(t)

	a := m.Create()
	b := m.Create()
	c := m.Create()

	assert.Equal(t, EntityID{Index: 0, Version: 0}, a)
	assert.Equal(t, EntityID{Index: 1, Version: 0}, b)
	assert.Equal(t, EntityID{Index: 2, Version: 0}, c)
	assert.Equal(t, 3, m.Alive())
}

func TestDestroyRecyclesIndexWithBumpedVersion(t *testing.T) {
	m := newTestManager(t)

	first := m.Create()
	require.Equal(t, EntityID{Index: 0, Version: 0}, first)

	require.NoError(t, m.Destroy(first))
	assert.False(t, m.Valid(first))

	second := m.Create()
	assert.Equal(t, first.Index, second.Index)
	assert.Equal(t, EntityID{Index: 0, Version: 1}, second)
	assert.NotEqual(t, first, second)
	assert.True(t, first.Less(second))

	// The stale handle stays invalid after its index is reoccupied.
	assert.False(t, m.Valid(first))
	assert.True(t, m.Valid(second))
}

func TestDestroyTwiceFails(t *testing.T) {
	m := newTestManager(t)

	id := m.Create()
	require.NoError(t, m.Destroy(id))

	err := m.Destroy(id)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidEntity))
}

func TestDestroyNeverAllocatedFails(t *testing.T) {
	m := newTestManager(t)

	err := m.Destroy(EntityID{Index: 42, Version: 0})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidEntity))
}

func TestCreateReusesLowestFreeIndex(t *testing.T) {
	m := newTestManager(t)

	ids := make([]EntityID, 5)
	for i := range ids {
		ids[i] = m.Create()
	}
	require.NoError(t, m.Destroy(ids[3]))
	require.NoError(t, m.Destroy(ids[1]))

	reused := m.Create()
	assert.Equal(t, uint32(1), reused.Index)
	reused = m.Create()
	assert.Equal(t, uint32(3), reused.Index)
}

func TestVersionBumpsOncePerRecycle(t *testing.T) {
	m := newTestManager(t)

	id := m.Create()
	for want := uint32(1); want <= 4; want++ {
		require.NoError(t, m.Destroy(id))
		id = m.Create()
		assert.Equal(t, want, id.Version)
	}
}

func TestAttachGetRoundtrip(t *testing.T) {
	m := newTestManager(t)
	id := m.Create()

	attached, err := Attach(m, id, &position{X: 1, Y: 2})
	require.NoError(t, err)

	got, err := Get[position](m, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Same(t, attached, got)
	assert.Equal(t, 1.0, got.X)

	// Mutations through the returned record are visible to later reads.
	got.X = 9
	again, err := Get[position](m, id)
	require.NoError(t, err)
	assert.Equal(t, 9.0, again.X)
}

func TestComponentTypesAreIndependent(t *testing.T) {
	m := newTestManager(t)
	id := m.Create()

	pos, err := Attach(m, id, &position{X: 1})
	require.NoError(t, err)

	_, err = Attach(m, id, &velocity{DX: 5})
	require.NoError(t, err)

	// Attaching velocity did not disturb position.
	got, err := Get[position](m, id)
	require.NoError(t, err)
	assert.Same(t, pos, got)
	assert.Equal(t, 1.0, got.X)

	require.NoError(t, Detach[velocity](m, id))
	got, err = Get[position](m, id)
	require.NoError(t, err)
	assert.Same(t, pos, got)
}

func TestAttachOverwritesSameType(t *testing.T) {
	m := newTestManager(t)
	id := m.Create()

	_, err := Attach(m, id, &health{Current: 10, Max: 10})
	require.NoError(t, err)
	replacement, err := Attach(m, id, &health{Current: 3, Max: 20})
	require.NoError(t, err)

	got, err := Get[health](m, id)
	require.NoError(t, err)
	assert.Same(t, replacement, got)
	assert.Equal(t, 3, got.Current)
}

func TestAttachNilComponentFails(t *testing.T) {
	m := newTestManager(t)
	id := m.Create()

	_, err := Attach[position](m, id, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNilComponent))
}

func TestGetAbsentComponentReturnsNil(t *testing.T) {
	m := newTestManager(t)
	id := m.Create()

	got, err := Get[position](m, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := Has[position](m, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStaleHandleFailsEveryOperation(t *testing.T) {
	m := newTestManager(t)
	id := m.Create()
	_, err := Attach(m, id, &position{})
	require.NoError(t, err)
	require.NoError(t, m.Destroy(id))

	_, err = Attach(m, id, &position{})
	assert.True(t, eris.Is(err, ErrInvalidEntity))
	_, err = Get[position](m, id)
	assert.True(t, eris.Is(err, ErrInvalidEntity))
	_, err = Has[position](m, id)
	assert.True(t, eris.Is(err, ErrInvalidEntity))
	err = Detach[position](m, id)
	assert.True(t, eris.Is(err, ErrInvalidEntity))
	_, err = m.Mask(id)
	assert.True(t, eris.Is(err, ErrInvalidEntity))
}

func TestRecycledIndexSeesNoStaleComponents(t *testing.T) {
	m := newTestManager(t)

	old := m.Create()
	_, err := Attach(m, old, &position{X: 7, Y: 7})
	require.NoError(t, err)
	_, err = Attach(m, old, &health{Current: 1, Max: 1})
	require.NoError(t, err)
	require.NoError(t, m.Destroy(old))

	reborn := m.Create()
	require.Equal(t, old.Index, reborn.Index)

	got, err := Get[position](m, reborn)
	require.NoError(t, err)
	assert.Nil(t, got)
	ok, err := Has[health](m, reborn)
	require.NoError(t, err)
	assert.False(t, ok)

	mask, err := m.Mask(reborn)
	require.NoError(t, err)
	assert.True(t, mask.IsZero())
}

func TestDetachAbsentIsNoOp(t *testing.T) {
	m := newTestManager(t)
	id := m.Create()

	require.NoError(t, Detach[position](m, id))
}

func TestMaskTracksComponentPresence(t *testing.T) {
	m := newTestManager(t)
	id := m.Create()

	_, err := Attach(m, id, &position{})
	require.NoError(t, err)
	_, err = Attach(m, id, &velocity{})
	require.NoError(t, err)

	mask, err := m.Mask(id)
	require.NoError(t, err)
	assert.Equal(t, 2, mask.Count())

	require.NoError(t, Detach[velocity](m, id))
	mask, err = m.Mask(id)
	require.NoError(t, err)
	assert.Equal(t, 1, mask.Count())
}

func TestResetDestroysEverything(t *testing.T) {
	m := newTestManager(t)

	destroyed := 0
	Subscribe(m.Bus(), func(EntityDestroyed) {
		destroyed++
	})

	for n := 0; n < 4; n++ {
		id := m.Create()
		_, err := Attach(m, id, &position{})
		require.NoError(t, err)
	}
	m.Reset()

	assert.Equal(t, 0, m.Alive())
	assert.Equal(t, 0, m.Capacity())
	assert.Equal(t, 4, destroyed)

	// The manager is reusable after a reset.
	id := m.Create()
	assert.Equal(t, EntityID{Index: 0, Version: 0}, id)
	got, err := Get[position](m, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLifecycleEventOrderOnDestroy(t *testing.T) {
	bus := NewEventBus()
	m := NewBuilder().Bus(bus).Init()

	var order []string
	Subscribe(bus, func(ev ComponentRemoved) {
		order = append(order, "removed:"+ev.Type.Name())
	})
	Subscribe(bus, func(EntityDestroyed) {
		order = append(order, "destroyed")
	})

	id := m.Create()
	_, err := Attach(m, id, &position{})
	require.NoError(t, err)
	_, err = Attach(m, id, &health{})
	require.NoError(t, err)

	require.NoError(t, m.Destroy(id))
	assert.Equal(t, []string{"removed:position", "removed:health", "destroyed"}, order)
}

func TestLifecycleEventsOnCreateAndAttach(t *testing.T) {
	bus := NewEventBus()
	m := NewBuilder().Bus(bus).Init()

	var created []EntityID
	var added []string
	Subscribe(bus, func(ev EntityCreated) {
		created = append(created, ev.ID)
	})
	Subscribe(bus, func(ev ComponentAdded) {
		added = append(added, ev.Type.Name())
	})

	id := m.Create()
	_, err := Attach(m, id, &position{})
	require.NoError(t, err)
	// Replacement is silent.
	_, err = Attach(m, id, &position{X: 1})
	require.NoError(t, err)

	assert.Equal(t, []EntityID{id}, created)
	assert.Equal(t, []string{"position"}, added)
}

func TestDestroyedHandleIsStaleInsideReceivers(t *testing.T) {
	bus := NewEventBus()
	m := NewBuilder().Bus(bus).Init()

	var validInside []bool
	Subscribe(bus, func(ev EntityDestroyed) {
		validInside = append(validInside, m.Valid(ev.ID))
	})

	id := m.Create()
	require.NoError(t, m.Destroy(id))
	assert.Equal(t, []bool{false}, validInside)
}

func TestDebugDump(t *testing.T) {
	m := newTestManager(t)

	id := m.Create()
	_, err := Attach(m, id, &position{})
	require.NoError(t, err)
	_, err = Attach(m, id, &health{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.DebugDump(&buf))

	out := buf.String()
	assert.Contains(t, out, `"position"`)
	assert.Contains(t, out, `"health"`)
	assert.Contains(t, out, `"index": 0`)
}

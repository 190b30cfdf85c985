package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSelection(t *testing.T) {
	s := NewSession("s1", 1, 1)

	t.Run("select defaults to qty 1", func(t *testing.T) {
		s.SelectItem(10, 250)
		assert.True(t, s.Selected(10))
		assert.Equal(t, 1, s.Cart[0].Qty)
	})

	t.Run("reselecting keeps existing entry", func(t *testing.T) {
		s.SetQty(10, 3)
		s.SelectItem(10, 250)
		assert.Len(t, s.Cart, 1)
		assert.Equal(t, 3, s.Cart[0].Qty)
	})

	t.Run("deselect removes the entry entirely", func(t *testing.T) {
		s.DeselectItem(10)
		assert.False(t, s.Selected(10))
		// qty does not survive a deselect
		s.SelectItem(10, 250)
		assert.Equal(t, 1, s.Cart[0].Qty)
	})

	t.Run("total sums qty times price", func(t *testing.T) {
		s.SelectItem(11, 100)
		s.SetQty(10, 2)
		assert.Equal(t, int64(2*250+100), s.Total())
	})

	t.Run("set qty ignores invalid values", func(t *testing.T) {
		s.SetQty(10, 0)
		assert.Equal(t, 2, s.Cart[0].Qty)
		s.SetQty(99, 5)
		assert.False(t, s.Selected(99))
	})
}

func TestSessionStepFlow(t *testing.T) {
	t.Run("empty cart cannot leave confirmation", func(t *testing.T) {
		s := NewSession("s2", 1, 1)
		assert.ErrorIs(t, s.NextStep(), ErrEmptySelection)
		assert.Equal(t, StepConfirmation, s.Step)
	})

	t.Run("details require name and email", func(t *testing.T) {
		s := NewSession("s3", 1, 1)
		s.SelectItem(10, 250)
		assert.NoError(t, s.NextStep())
		assert.Equal(t, StepDetails, s.Step)

		assert.ErrorIs(t, s.NextStep(), ErrMissingDonorInfo)
		s.SetDonorDetails("Jane", "jane@x.com")
		assert.NoError(t, s.NextStep())
		assert.Equal(t, StepPayment, s.Step)
	})

	t.Run("back keeps cart and donor details", func(t *testing.T) {
		s := NewSession("s4", 1, 1)
		s.SelectItem(10, 250)
		s.NextStep()
		s.SetDonorDetails("Jane", "jane@x.com")
		s.NextStep()

		assert.NoError(t, s.PrevStep())
		assert.NoError(t, s.PrevStep())
		assert.Equal(t, StepConfirmation, s.Step)
		assert.True(t, s.Selected(10))
		assert.Equal(t, "Jane", s.DonorName)

		assert.ErrorIs(t, s.PrevStep(), ErrAlreadyFirstStep)
	})

	t.Run("finish only from payment", func(t *testing.T) {
		s := NewSession("s5", 1, 1)
		assert.ErrorIs(t, s.Finish(), ErrNotPaymentStep)

		s.SelectItem(10, 250)
		s.NextStep()
		s.SetDonorDetails("Jane", "jane@x.com")
		s.NextStep()
		assert.NoError(t, s.Finish())
		assert.Equal(t, StepSuccess, s.Step)
	})

	t.Run("finished session rejects every transition", func(t *testing.T) {
		s := NewSession("s6", 1, 1)
		s.SelectItem(10, 250)
		s.NextStep()
		s.SetDonorDetails("Jane", "jane@x.com")
		s.NextStep()
		s.Finish()

		assert.ErrorIs(t, s.NextStep(), ErrSessionFinished)
		assert.ErrorIs(t, s.PrevStep(), ErrSessionFinished)
		assert.ErrorIs(t, s.Finish(), ErrSessionFinished)
	})
}

func TestStore(t *testing.T) {
	store := NewStore()
	s := store.Create(1, 2, 3)
	assert.NotEmpty(t, s.Id)
	assert.Equal(t, int64(3), s.DonorId)

	got, err := store.Get(s.Id)
	assert.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Update(s.Id, func(sess *Session) error {
		sess.SelectItem(10, 250)
		return nil
	})
	assert.NoError(t, err)
	got, _ = store.Get(s.Id)
	assert.True(t, got.Selected(10))

	store.Remove(s.Id)
	_, err = store.Get(s.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStoreReturnsSnapshots(t *testing.T) {
	store := NewStore()
	s := store.Create(1, 2, 0)

	before, err := store.Get(s.Id)
	require.NoError(t, err)

	_, err = store.Update(s.Id, func(sess *Session) error {
		sess.SelectItem(10, 250)
		sess.SetDonorDetails("Jane", "jane@x.com")
		return nil
	})
	require.NoError(t, err)

	// the earlier snapshot is untouched by the update
	assert.False(t, before.Selected(10))
	assert.Empty(t, before.DonorName)
	assert.Equal(t, int64(0), before.Total())

	// mutating a snapshot never reaches the stored session
	after, err := store.Get(s.Id)
	require.NoError(t, err)
	after.SetQty(10, 99)
	after.DonorName = "Mallory"

	stored, err := store.Get(s.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Cart[0].Qty)
	assert.Equal(t, "Jane", stored.DonorName)
}

func TestStoreConcurrentReadersAndWriters(t *testing.T) {
	store := NewStore()
	s := store.Create(1, 2, 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			store.Update(s.Id, func(sess *Session) error {
				sess.SelectItem(int64(i%7), 250)
				sess.SetQty(int64(i%7), i%5+1)
				return nil
			})
		}
	}()

	for i := 0; i < 500; i++ {
		got, err := store.Get(s.Id)
		require.NoError(t, err)
		// totals computed off the snapshot are always internally consistent
		var want int64
		for _, it := range got.Cart {
			want += int64(it.Qty) * it.Price
		}
		assert.Equal(t, want, got.Total())
	}
	<-done
}

func TestStoreSweep(t *testing.T) {
	store := NewStore()
	stale := store.Create(1, 2, 0)
	fresh := store.Create(1, 2, 0)

	store.mu.Lock()
	store.sessions[stale.Id].LastActive = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()

	removed := store.Sweep(time.Hour)
	assert.Equal(t, 1, removed)

	_, err := store.Get(stale.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(fresh.Id)
	assert.NoError(t, err)
}

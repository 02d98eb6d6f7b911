package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSettable(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, IsSettable(s), "%s should be settable", s)
	}

	assert.False(t, IsSettable(StatusPendingReview), "pending_review is internal only")
	assert.False(t, IsSettable(Status("archived")))
	assert.False(t, IsSettable(Status("")))
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusProcessing},
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusPending, StatusCancelled},
		{StatusPending, StatusPendingReview},
		{StatusPendingReview, StatusProcessing},
		{StatusPendingReview, StatusCancelled},
		{StatusProcessing, StatusShipped},
		{StatusProcessing, StatusDelivered},
		{StatusProcessing, StatusCancelled},
		{StatusShipped, StatusDelivered},
		{StatusShipped, StatusCancelled},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	denied := []struct{ from, to Status }{
		{StatusDelivered, StatusPending},
		{StatusDelivered, StatusShipped},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusProcessing},
		{StatusShipped, StatusProcessing},
		{StatusShipped, StatusPending},
		{StatusProcessing, StatusPending},
		{StatusPendingReview, StatusPendingReview},
		{StatusPending, StatusPending},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr.from, tr.to), "%s -> %s should be denied", tr.from, tr.to)
	}
}

func TestValidStatusValues(t *testing.T) {
	assert.Equal(t, "pending, processing, shipped, delivered, cancelled", ValidStatusValues())
}

package enums

// OutboxEventType names the domain events persisted through the outbox.
type OutboxEventType string

const (
	EventEnrollmentCommitted OutboxEventType = "enrollment.committed"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateCart OutboxAggregateType = "cart"
)

// String implements fmt.Stringer.
func (t OutboxEventType) String() string {
	return string(t)
}

// String implements fmt.Stringer.
func (t OutboxAggregateType) String() string {
	return string(t)
}

package ports

// Port: fire-and-forget notification sink. Implementations log delivery
// failures; none of these calls may fail the batch.
type Notifier interface {
	// Announce a freshly generated route for a region to the operations
	// mailbox. mapsLink may be empty when no link could be built.
	RouteGenerated(region string, mapsLink string)

	// Tell a customer their order was pushed to the next delivery run.
	OrderRescheduled(email string, orderNumber string, rescheduleCount int)

	// Tell a customer their order was cancelled.
	OrderCancelled(email string, orderNumber string)
}

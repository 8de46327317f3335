/*
Package counter implements the visit counter service.

Increments are accumulated in a local WriteBuffer and written to the backing nodes by a
background Flusher. The node owning a key is selected with a consistent hash ring
(see package ring), one client per node is kept in the NodeRegistry.

Reads return the base count of the owning node plus the pending local delta of the key.
Base counts are kept in a ReadCache for a fixed ttl, every increment of a key removes
its cache entry.

Durability: buffered increments live only in memory. Stop runs a final flush, increments
buffered at an uncontrolled crash are lost. Failed flushes are retried on the next tick,
a write that reached the node but whose answer got lost is counted again (at-least-once).

Usage:

	svc, err := counter.NewService(conf, connector)
	if err != nil {
		// handle error
	}
	svc.Start()
	defer svc.Stop()

	svc.IncrementVisit("page1")
	count, err := svc.GetVisitCount("page1")
*/
package counter

// Package journal records the statements a QueryClient executes.
//
// Every statement, synchronous or asynchronous, successful or not, is
// handed to the configured journal as a types.JournalEntry. Recording is
// best-effort: the client logs and counts a failed write but never fails
// the statement because of it.
//
// # Memory Journal
//
// [Memory] keeps the most recent entries in a fixed-size ring buffer. It is
// suitable for tests and for inspecting what a demo run did:
//
//	j := journal.NewMemory(journal.WithCapacity(256))
//	client, _ := cqlclient.NewQueryClient(connector, cqlclient.WithJournal(j))
//	...
//	for _, e := range j.Entries() {
//	    fmt.Println(e.Kind, e.Statement, e.Duration)
//	}
//
// # NATS Journal
//
// [NATS] publishes entries to a JetStream stream, one subject per statement
// kind ("cqlclient.journal.insert", "cqlclient.journal.select", ...). Entries
// are MessagePack-encoded; UUID arguments use extension type 10 so they
// survive the round trip as 16-byte values.
//
//	nc, _ := nats.Connect("nats://localhost:4222")
//	js, _ := jetstream.New(nc)
//	j, _ := journal.NewNATS(js)
//
//	entries, _ := j.Fetch(ctx, 100) // read back from the start of the stream
//
// The NATS connection is owned by the caller; Close does not close it.
package journal

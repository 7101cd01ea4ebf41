// Package dlf embeds the dlf list view search in a Go program.
//
// The client runs the same pipeline as the HTTP service: it opens the
// encrypted settings token, queries the Redis search indexes, resolves
// collections and listed metadata from the SQLite catalog and attaches
// viewer deep links to every hit.
//
//	client, err := dlf.New(ctx,
//	    dlf.WithRedis("localhost:6379", ""),
//	    dlf.WithCatalog("dlf.db"),
//	    dlf.WithEncryptionKey(os.Getenv("DLF_ENCRYPTION_KEY")),
//	    dlf.WithLinks("https://digital.example.org", "/werkansicht"),
//	)
//	defer client.Close()
//
//	token, _ := client.Seal(dlf.Settings{Core: "core1", StoragePID: 5, PageViewPID: 7})
//	resp, err := client.Search(ctx, token, url.Values{"term": {"faust"}})
package dlf

// Package livy provides a Go client library for the Apache Livy REST API.
//
// Livy is a service for submitting Spark work over HTTP. The client covers
// both sides of that surface: interactive sessions, which accept code
// statements and report their results, and batch jobs, which run a single
// application to completion.
//
// # Getting Started
//
// Create a client and start an interactive session:
//
//	client, err := livy.NewClient("http://livy-server:8998")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session, _, err := client.CreateSession(ctx, &livy.CreateSessionRequest{
//	    Kind: livy.KindSpark,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Poll the session until it is idle, then run statements in it:
//
//	stmt, _, err := client.RunStatement(ctx, *session.Id, &livy.RunStatementRequest{
//	    Code: "1 + 1",
//	})
//
// # Optional Fields
//
// The service may omit any field from any response, so every entity
// attribute is a pointer (or a nil-able slice/map). Use livy.Ptr to fill
// optional request fields:
//
//	req := livy.CreateSessionRequest{
//	    Kind:        livy.KindPyspark,
//	    DriverCores: livy.Ptr(int64(2)),
//	}
//
// # Errors
//
// Every call performs exactly one request/response round trip. A non-200
// status surfaces as *StatusError, a malformed 200 body as *DecodeError,
// and network failures are returned with their underlying cause wrapped.
// The client never retries; that policy belongs to the caller.
//
// # Authentication
//
// The livyauth/kerberos and livyauth/oauth2 packages produce RequestOption
// values that attach SPNEGO or bearer-token credentials to every request:
//
//	opt, closer, err := kerberos.NewRequestOption(kerberos.Config{...})
//	client, err := livy.NewClient(url, livy.WithRequestOptions(opt))
package livy

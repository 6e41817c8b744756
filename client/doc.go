// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is a Go client for the poll API.

	kp, err := client.LoadKeypair("~/.config/poll-app/id.json")
	c := client.New("http://localhost:3318", client.WithKeypair(kp))

	c.Register(ctx)
	created, err := c.CreatePoll(ctx, "Lunch?", []string{"Pizza", "Soup"}, 3600)
	_, err = c.Vote(ctx, created.Address, 1)

Register, CreatePoll and Vote are signed with the keypair. Reads need no
keypair.

Network errors and 5xx responses are retried with exponential backoff.
Other failures come back as *APIError, which matches the poll package's
sentinels under errors.Is.
*/
package client

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identity keys and request signatures.

# Identities

An identity is an ed25519 keypair. Its 32-byte public key is the
ledger.Key the poll program records as registry owner and voter:

	kp, err := auth.GenerateKeypair()

Keypairs serialize as JSON with hex fields:

	{"public_key": "<64 hex>", "private_key": "<128 hex>"}

# Request Signatures

Mutating API calls are signed by the caller. Three headers carry the
signature:

	X-Identity:  hex public key
	X-Timestamp: unix seconds
	X-Signature: hex ed25519 signature over SigningPayload

The payload binds method, path, timestamp and a SHA-256 of the body:

	POST
	/polls
	1700000000
	<hex sha256 of body>

Clients call SignRequest; the server calls VerifyRequest and rejects
timestamps further than the allowed skew from its clock. Signatures are
not single-use: a replay inside the skew window repeats the operation.
Votes and registrations reject the repeat on their own.

The verified key travels down the handler chain with WithIdentity and
IdentityFrom.
*/
package auth

// Package backend implements ports.ActorFactory and ports.Actor over the
// recipe backend's HTTP gateway.
//
// Every method is a POST to
//
//	{host}/api/canister/{canister id}/{query|call}/{method}
//
// with a JSON argument body. Requests carry the caller principal, and when
// the identity can sign, an ed25519 signature over the body plus the
// delegation chain. Replies are JSON; rejects are
// {"reject_code": n, "reject_message": "..."} and become *domain.CallError,
// tagged KindTransientSignature when the gateway reports a certificate
// signature failure.
package backend

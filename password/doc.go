// Package password implements argon2id hashing and the strength tiers used to
// reject trivially weak passwords.
//
// # Output format
//
// Hashes are encoded in PHC string format with unpadded base64 fields:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Argon2.NeedsUpgrade] reports hashes produced with weaker parameters than the
// current configuration so the caller can re-hash after a successful login.
//
// # Architecture boundaries
//
// This package owns hashing, verification and strength scoring. Whether a
// given tier is acceptable is decided by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive hashes.
//   - Import any other otpAuth package.
//   - Log plaintext passwords.
package password

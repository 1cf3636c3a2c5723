// Package adaptive seals small secrets at rest.
//
// A Sealer wraps an AEAD chosen for the host: AES-256-GCM where the CPU
// accelerates AES, ChaCha20-Poly1305 elsewhere. Sealed blobs carry a
// one-byte header naming the algorithm, so a blob written on one machine
// opens on another with the same key regardless of which cipher the
// reader would have picked.
//
// Envelope layout:
//
//	[1 byte algorithm][nonce][ciphertext || tag]
//
// Keys are 32 random bytes kept in a 0600 key file next to the data
// they protect (see LoadOrCreateKey).
package adaptive

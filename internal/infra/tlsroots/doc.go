// Package tlsroots builds the TLS configuration used to reach the
// authentication API over HTTPS.
//
// The system roots are always trusted; tls.cafile adds a private CA
// (a PEM file or a directory of .pem/.crt/.cer files). An optional client
// certificate supports gateways that require mutual TLS.
package tlsroots

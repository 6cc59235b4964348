// Package integration contains the supplier integration bounded context.
// It defines how third-party apparel suppliers are identified and reached.
//
// Key concepts:
//   - SupplierID: canonical supplier identifier, with alias normalization
//   - RawProduct: an unparsed supplier payload, one per style/product
//   - SupplierConnector: port interface implemented once per supplier API
//   - ConnectorError: classified upstream failure (auth, rate limit, server, network, not found)
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in internal/infrastructure/supplier
package integration

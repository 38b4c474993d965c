// Package marketplace holds the order synchronization and reconciliation services.
//
// The services sit between the marketplace API ports and the repositories of the
// domain package:
//
//   - TokenProvider caches bearer tokens per account
//   - ImageResolver resolves and caches product images by EAN
//   - MapLineItem turns one upstream line item into an OrderItem
//   - OrderFetcher fetches, maps and persists one order
//   - OrderLister fetches one page of the order index with every order's details
//   - ShipmentReconciler attaches carrier barcodes to labels
//   - ScanRegistrar records physical label scans
//   - OrderResyncer refreshes stored orders from upstream
//
// Batch operations never fail as a whole because of one order: failures are logged and
// reported in the result, and sibling work keeps running.
package marketplace

// Package catalog implements the bookshelf write and read paths.
//
// Maintainer runs every compound write (add, update and delete of books,
// rename and delete of topics) inside a single transaction and leaves the
// database with no author or topic that lacks a link row. Reader serves the
// overview, detail and export projections. Integrity scans for and repairs
// drift that the write paths would never produce themselves, such as rows
// edited by hand.
//
// Slugs are computed from a snapshot of the existing slugs inside the write
// transaction. Two writers racing on the same title can still end up with the
// same slug; the catalog has one maintainer and Integrity reports any
// duplicates instead of the write path locking.
package catalog

// Package lib holds modules that do not fit strictly into other layers.
//
// archive: copies of exported reports in S3-compatible storage.
package lib

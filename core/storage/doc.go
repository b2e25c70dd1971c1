// Package storage provides the object storage client used for character
// portraits.
//
// It wraps the Minio S3 client behind a narrow Client interface so features
// can be tested against mocks (see the mocks subpackage). The bucket is
// created at startup if it does not exist.
package storage

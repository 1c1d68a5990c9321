package config

import (
	"errors"
)

var (
	// ErrUnknownRepository the default (or requested) repository has no block under repositories.
	ErrUnknownRepository = errors.New("config repository is not defined")

	// ErrUnknownCodec codec is not one of msgpack, cbor, protobuf, json.
	ErrUnknownCodec = errors.New("config codec is unknown")

	// ErrUnknownCacheStore cache.store is not a supported store.
	ErrUnknownCacheStore = errors.New("config cache.store is unknown")

	// ErrUnknownLogBackend log.backend is not one of zap, zerolog, logrus, slog.
	ErrUnknownLogBackend = errors.New("config log.backend is unknown")

	// ErrNegativeAsync hooks.async_workers and hooks.async_queue can not be negative.
	ErrNegativeAsync = errors.New("config hooks async sizes can not be negative")

	// ErrNegativeMaxDecode max_decode can not be negative.
	ErrNegativeMaxDecode = errors.New("config max_decode can not be negative")
)

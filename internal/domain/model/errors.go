package model

import "errors"

// 在庫モデルのドメインエラー
var (
	ErrColorNotFound     = errors.New("color not found")
	ErrSizeNotFound      = errors.New("size not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// 注文ライフサイクルのドメインエラー
var (
	ErrNotCancellable    = errors.New("order cannot be cancelled at this stage")
	ErrInvalidTransition = errors.New("invalid status transition")
)

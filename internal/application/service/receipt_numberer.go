package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sangkips/receipts-api/internal/domain/repository"
)

const (
	defaultReceiptPrefix = "RECIBO"
	defaultNumberDigits  = 8
)

// ReceiptNumberer allocates human-readable receipt numbers of the form
// <prefix>-<zero-padded sequence>. It reads the latest number and adds one
// without holding a lock, so two concurrent callers can get the same value.
// ReceiptService retries on the resulting unique-key conflict.
type ReceiptNumberer struct {
	repo   repository.ReceiptRepository
	prefix string
	digits int
}

// NewReceiptNumberer creates a numberer. Empty prefix or non-positive
// digits fall back to RECIBO and 8.
func NewReceiptNumberer(repo repository.ReceiptRepository, prefix string, digits int) *ReceiptNumberer {
	if prefix == "" {
		prefix = defaultReceiptPrefix
	}
	if digits <= 0 {
		digits = defaultNumberDigits
	}
	return &ReceiptNumberer{repo: repo, prefix: prefix, digits: digits}
}

// GenerateNext previews the next number. Nothing is reserved.
func (n *ReceiptNumberer) GenerateNext(ctx context.Context) (string, error) {
	return n.next(ctx, n.repo, 0)
}

// next reads the last number through repo, which may be bound to a
// transaction, and skips ahead by offset candidates.
func (n *ReceiptNumberer) next(ctx context.Context, repo repository.ReceiptRepository, offset int) (string, error) {
	last, err := repo.LastNumber(ctx)
	if err != nil {
		return "", err
	}
	return n.Format(ParseSequence(last) + 1 + offset), nil
}

// Format renders seq with the configured prefix and width
func (n *ReceiptNumberer) Format(seq int) string {
	return fmt.Sprintf("%s-%0*d", n.prefix, n.digits, seq)
}

// ParseSequence returns the integer after the last "-" of number, or 0 when
// there is none or it does not parse.
func ParseSequence(number string) int {
	idx := strings.LastIndex(number, "-")
	if idx < 0 {
		return 0
	}
	seq, err := strconv.Atoi(number[idx+1:])
	if err != nil || seq < 0 {
		return 0
	}
	return seq
}

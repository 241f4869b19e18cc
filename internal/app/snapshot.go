package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/evanschultz/kanboard/internal/domain"
)

// EncodeBoard writes board as indented JSON, the same shape the persisters store.
func EncodeBoard(w io.Writer, board domain.Board) error {
	if board.Columns == nil {
		board.Columns = []domain.Column{}
	}
	if board.Tasks == nil {
		board.Tasks = []domain.Task{}
	}
	encoded, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	if _, err := w.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("write board: %w", err)
	}
	return nil
}

// DecodeBoard reads one board document. The document is checked against the board
// schema first; unknown fields and trailing content are rejected.
func DecodeBoard(r io.Reader) (domain.Board, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return domain.Board{}, fmt.Errorf("read board: %w", err)
	}

	var doc any
	if err := decodeStrict(raw, &doc, false); err != nil {
		return domain.Board{}, fmt.Errorf("decode board: %w", err)
	}
	if err := validateBoardDocument(doc); err != nil {
		return domain.Board{}, fmt.Errorf("decode board: %w", err)
	}

	var board domain.Board
	if err := decodeStrict(raw, &board, true); err != nil {
		return domain.Board{}, fmt.Errorf("decode board: %w", err)
	}
	return board, nil
}

// decodeStrict decodes exactly one JSON value from raw.
func decodeStrict(raw []byte, out any, disallowUnknown bool) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if disallowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(out); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("trailing content after document")
	}
	return nil
}

// Import normalizes board and replaces the store state with it.
// It reports how many malformed entries were dropped.
func (s *Store) Import(ctx context.Context, board domain.Board) (int, error) {
	normalized, dropped := board.Normalize()
	if err := s.Reset(ctx, normalized); err != nil {
		return dropped, err
	}
	return dropped, nil
}

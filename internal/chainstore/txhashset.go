// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package chainstore

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/maciekf/grin-sync/lib/common"
)

// TxHashSetHeader is the framing written ahead of the gzip body: the
// horizon header the snapshot was taken at, plus a commitment count, so a
// reader can validate the archive before streaming it into a CommitmentSet.
type TxHashSetHeader struct {
	Height     uint64
	HeaderHash common.Hash
	Count      uint64
}

// WriteTxHashSet streams the commitments in set as a gzip-compressed
// archive to w, framed with a small fixed header. klauspost/compress's
// gzip is a drop-in accelerated replacement for compress/gzip, used here
// because a txhashset snapshot for a mature chain is large enough that the
// faster implementation matters on both ends of the wire.
func WriteTxHashSet(w io.Writer, header TxHashSetHeader, commitments [][]byte) error {
	header.Count = uint64(len(commitments))

	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, header); err != nil {
		return err
	}

	gz, err := gzip.NewWriterLevel(bw, gzip.BestSpeed)
	if err != nil {
		return fmt.Errorf("chainstore: txhashset gzip writer: %w", err)
	}
	for _, commitment := range commitments {
		if err := binary.Write(gz, binary.BigEndian, uint32(len(commitment))); err != nil {
			return fmt.Errorf("chainstore: txhashset write length: %w", err)
		}
		if _, err := gz.Write(commitment); err != nil {
			return fmt.Errorf("chainstore: txhashset write commitment: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("chainstore: txhashset gzip close: %w", err)
	}
	return bw.Flush()
}

// ReadTxHashSet reads an archive written by WriteTxHashSet back into its
// header and commitment list.
func ReadTxHashSet(r io.Reader) (TxHashSetHeader, [][]byte, error) {
	header, err := readHeader(r)
	if err != nil {
		return TxHashSetHeader{}, nil, err
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return TxHashSetHeader{}, nil, fmt.Errorf("chainstore: txhashset gzip reader: %w", err)
	}
	defer gz.Close()

	commitments := make([][]byte, 0, header.Count)
	for i := uint64(0); i < header.Count; i++ {
		var length uint32
		if err := binary.Read(gz, binary.BigEndian, &length); err != nil {
			return TxHashSetHeader{}, nil, fmt.Errorf("chainstore: txhashset read length: %w", err)
		}
		commitment := make([]byte, length)
		if _, err := io.ReadFull(gz, commitment); err != nil {
			return TxHashSetHeader{}, nil, fmt.Errorf("chainstore: txhashset read commitment: %w", err)
		}
		commitments = append(commitments, commitment)
	}
	return header, commitments, nil
}

func writeHeader(w io.Writer, h TxHashSetHeader) error {
	if err := binary.Write(w, binary.BigEndian, h.Height); err != nil {
		return fmt.Errorf("chainstore: txhashset write header height: %w", err)
	}
	if _, err := w.Write(h.HeaderHash[:]); err != nil {
		return fmt.Errorf("chainstore: txhashset write header hash: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, h.Count); err != nil {
		return fmt.Errorf("chainstore: txhashset write header count: %w", err)
	}
	return nil
}

func readHeader(r io.Reader) (TxHashSetHeader, error) {
	var h TxHashSetHeader
	if err := binary.Read(r, binary.BigEndian, &h.Height); err != nil {
		return h, fmt.Errorf("chainstore: txhashset read header height: %w", err)
	}
	if _, err := io.ReadFull(r, h.HeaderHash[:]); err != nil {
		return h, fmt.Errorf("chainstore: txhashset read header hash: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &h.Count); err != nil {
		return h, fmt.Errorf("chainstore: txhashset read header count: %w", err)
	}
	return h, nil
}

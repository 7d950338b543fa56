// Package sniff classifies job files by content, not by extension.
package sniff

import (
	"bytes"
	"encoding/binary"

	"github.com/croncommander/cc-jobparse/internal/jobmodel"
	"github.com/croncommander/cc-jobparse/internal/xmljob"
)

// Prefix is how many leading bytes Classify needs. Longer input is fine;
// only the prefix is examined.
const Prefix = 512

const (
	binaryHeaderSize  = 68
	binaryFileVersion = 1
)

var xmlMarkers = [][]byte{[]byte("<?xml"), []byte("<Task")}

// Classify reports the format of a file from its first bytes.
func Classify(first []byte) jobmodel.Format {
	if len(first) > Prefix {
		first = first[:Prefix]
	}
	if looksLikeXML(first) {
		return jobmodel.FormatXML
	}
	if len(first) >= binaryHeaderSize && binary.LittleEndian.Uint16(first[2:4]) == binaryFileVersion {
		return jobmodel.FormatBinary
	}
	return jobmodel.FormatUnknown
}

func looksLikeXML(first []byte) bool {
	text, err := xmljob.ToUTF8(first)
	if err != nil {
		return false
	}
	text = bytes.TrimLeft(text, " \t\r\n")
	for _, m := range xmlMarkers {
		if bytes.HasPrefix(text, m) {
			return true
		}
	}
	return false
}

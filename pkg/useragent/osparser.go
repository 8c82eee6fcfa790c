package useragent

import (
	"fmt"
	"os"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// OSParser enriches click events with the operating system family parsed
// from the User-Agent. It wraps the uap-go parser behind a nil-safe handle
// so the analytics pipeline works without the regexes file.
type OSParser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// NewOSParser creates an OS parser from a uap-core regexes file.
func NewOSParser(regexFilePath string, log *zap.Logger) (*OSParser, error) {
	regexBytes, err := os.ReadFile(regexFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regexes file %s: %w", regexFilePath, err)
	}

	parser, err := uaparser.NewFromBytes(regexBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent OS parser initialized", zap.String("regexes_file", regexFilePath))

	return &OSParser{
		parser: parser,
		log:    log,
	}, nil
}

// OSFamily returns the OS family for the given User-Agent, or nil when the
// parser is unavailable or the family is unknown. Safe on a nil receiver.
func (p *OSParser) OSFamily(userAgent string) *string {
	if p == nil || p.parser == nil {
		return nil
	}
	if userAgent == "" || userAgent == "unknown" {
		return nil
	}

	client := p.parser.Parse(userAgent)
	family := client.Os.Family
	if family == "" || family == "Other" {
		return nil
	}

	return strPtr(family)
}

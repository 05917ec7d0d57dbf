package parsers

import "fmt"

func GetParser(format string) (Parser, error) {
	switch format {
	case "appfolio":
		return &ledgerParser{vendor: "appfolio"}, nil
	case "buildium":
		return &ledgerParser{vendor: "buildium"}, nil
	default:
		return nil, fmt.Errorf("no parser available for format: %s", format)
	}
}

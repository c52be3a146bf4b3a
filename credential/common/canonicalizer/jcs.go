package canonicalizer

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

func canonicalizeJCS(doc map[string]interface{}) ([]byte, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, &CanonicalizationError{Algorithm: JCS, Err: fmt.Errorf("failed to marshal document: %w", err)}
	}

	canonical, err := jcs.Transform(encoded)
	if err != nil {
		return nil, &CanonicalizationError{Algorithm: JCS, Err: err}
	}
	return canonical, nil
}

package study

import (
	"encoding/base64"
	"io"
	"io/ioutil"
	"sync"

	"github.com/pkg/errors"
)

// FileSource is a raw file handle handed to the reader collaborator.
type FileSource struct {
	Name string
	Type string
	R    io.Reader
}

// ReadFiles converts the sources into encoded SubmissionFiles, reading
// concurrently. Partial failures abort the whole batch: one failed read
// rejects the entire attach operation and none of the files are returned.
//
// Reads are not cancellable; once started they run to completion. A caller
// abandoning the operation simply discards the result.
func ReadFiles(sources []FileSource) ([]SubmissionFile, error) {
	files := make([]SubmissionFile, len(sources))
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src FileSource) {
			defer wg.Done()
			files[i], errs[i] = readFile(src)
		}(i, src)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", sources[i].Name)
		}
	}
	return files, nil
}

// readFile slurps one source into a self-describing data URL, the encoding
// the stored collections already use for attachments.
func readFile(src FileSource) (SubmissionFile, error) {
	raw, err := ioutil.ReadAll(src.R)
	if err != nil {
		return SubmissionFile{}, err
	}
	mimeType := src.Type
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return SubmissionFile{
		Name: src.Name,
		Type: mimeType,
		Data: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw),
	}, nil
}

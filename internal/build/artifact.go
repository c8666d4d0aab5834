package build

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tdewolff/minify/v2"
	mxml "github.com/tdewolff/minify/v2/xml"

	domainbuild "inkpipe/internal/domain/build"
)

// upToDate reports whether the artifact at path was produced from fp.
func (b *Builder) upToDate(name, path string, fp domainbuild.Fingerprint) bool {
	if b.Force {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		return false
	}
	prev, err := b.Store.Fingerprint(name)
	if err != nil {
		b.log().WithError(err).Warn("read fingerprint")
		return false
	}
	return prev == fp.Hash
}

func (b *Builder) encodeXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	if !b.Cfg.Build.Minify {
		return buf.Bytes(), nil
	}
	m := minify.New()
	m.AddFunc("text/xml", mxml.Minify)
	out, err := m.Bytes("text/xml", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minify: %w", err)
	}
	return out, nil
}

// writeArtifact writes data and records its fingerprint.
func (b *Builder) writeArtifact(name, path string, data []byte, fp domainbuild.Fingerprint) error {
	if err := writeFile("", path, data); err != nil {
		return err
	}
	if err := b.Store.SetFingerprint(name, fp.Hash); err != nil {
		return err
	}
	b.log().WithFields(logrus.Fields{"artifact": name, "path": path, "bytes": len(data)}).Info("written")
	return nil
}

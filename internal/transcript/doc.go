// Package transcript fetches YouTube captions and video metadata. It
// talks to the same endpoints the YouTube player uses, so no API key
// is required.
package transcript

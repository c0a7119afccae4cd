// Package language normalizes caption language identifiers. YouTube caption
// tracks carry BCP 47 tags ("en", "en-US", "pt-BR") while configuration
// accepts two- and three-letter ISO codes or plain words like "english";
// everything funnels down to ISO 639-1 for comparison.
package language

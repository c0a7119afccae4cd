// Package summarize turns a video transcript into a structured
// knowledge extraction using Claude on AWS Bedrock. Short transcripts
// go to the model in one shot; long ones are split into chunks,
// summarized individually, and combined.
package summarize

package nodes

// Node keys. They double as the stage names recorded on the route.
const (
	NodeClassifyIntent   = "classify_intent"
	NodeGenerateSQL      = "generate_sql_query"
	NodeExecuteSQL       = "execute_sql"
	NodeGetPolicy        = "get_policy"
	NodeGenerateResponse = "generate_response"
)

// Replies substituted when a stage cannot produce its normal output.
const (
	SchemaUnavailableText = "Database schema unavailable."
	SQLGenerationFailed   = "Failed to generate SQL query."
	NoSQLQueryText        = "No SQL query to execute."
	DatabaseQueryFailed   = "Database query failed."
	NoResultsText         = "No results found."
	ResponseFailedText    = "I'm sorry, I couldn't process your request."
)

const nameSlot = "[Your Name]"

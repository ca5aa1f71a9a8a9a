package config

const definitionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "dskeyring configuration",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "version": {"type": "integer", "enum": [0]},
    "backend": {"type": "string", "minLength": 1},
    "keystore_path": {"type": "string", "minLength": 1},
    "service": {"type": "string", "minLength": 1}
  }
}`

package nlq

// DatabaseSchema is the static, model-readable description of the queryable
// tables, columns, relationships, and domain thresholds. It is the only
// artifact shared across pipeline runs and is never mutated.
const DatabaseSchema = `
Database Schema for the IoT Fleet Monitor:

Table: devices
- id: bigint (primary key)
- name: text (device name)
- location: text (device location)
- is_active: boolean (device status)

Table: readings
- id: bigint (primary key)
- device_id: bigint (foreign key to devices.id)
- temperature: double precision (temperature in Celsius)
- humidity: double precision (humidity percentage)
- battery_level: double precision (battery percentage)
- timestamp: timestamptz (reading timestamp)

Relationships:
- One device has many readings (1:N relationship)
- Join devices and readings using device_id

Critical Thresholds:
- Critical temperature: > 80
- Low battery: < 20
`

const sqlGenerationSystemPrompt = `You are a PostgreSQL expert. Convert natural language queries to SQL.

Rules:
1. Return ONLY valid PostgreSQL SQL - no explanations or markdown
2. Use proper JOIN syntax when querying multiple tables
3. Always include appropriate WHERE clauses for filters
4. Use aggregate functions (COUNT, AVG, MAX, MIN) when appropriate
5. For time-based queries, use timestamp comparisons
6. Limit results to 100 rows unless specified
7. Use descriptive column aliases

Database Schema:
%s

Examples:
Query: "Show all devices"
SQL: SELECT id, name, location, is_active FROM devices LIMIT 100;

Query: "Devices with temperature above 80"
SQL: SELECT DISTINCT d.id, d.name, d.location, r.temperature
     FROM devices d
     JOIN readings r ON d.id = r.device_id
     WHERE r.temperature > 80
     ORDER BY r.temperature DESC
     LIMIT 100;

Query: "Average temperature per device"
SQL: SELECT d.name, d.location, AVG(r.temperature) AS avg_temperature
     FROM devices d
     JOIN readings r ON d.id = r.device_id
     GROUP BY d.id, d.name, d.location
     ORDER BY avg_temperature DESC;
`

const sqlValidationPrompt = `Validate this SQL query for safety.

SQL: %s

Check for:
1. Only SELECT statements (no INSERT, UPDATE, DELETE, DROP)
2. No dangerous operations
3. Valid PostgreSQL syntax

Respond with only "SAFE" or "UNSAFE: reason"`

const responseFormattingPrompt = `You are a helpful IoT monitoring assistant.
Summarize the database query results in clear, concise natural language.

Original Query: %s
Results: %s

Provide:
1. A brief summary of findings
2. Key insights or notable patterns
3. Any recommendations if relevant

Keep the response professional and technical.`

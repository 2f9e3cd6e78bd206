package mcp

import "encoding/json"

// ServerResult is the ServerMessage success-result variant: the already
// JSON-encoded result body for one of the thirteen request kinds. Handlers
// build one via the New*Result constructors below rather than
// constructing the envelope by hand, so every result's wire shape stays
// centralized here.
type ServerResult struct {
	Body json.RawMessage
}

// MarshalJSON returns Body verbatim; ServerResult is already JSON.
func (r ServerResult) MarshalJSON() ([]byte, error) { return r.Body, nil }

// Tool is the MCP wire shape of a single tool definition. Meta carries the
// tool's "options.meta" JSON string (the ToolMetadata source); the
// filter middleware (C6) is the only consumer that parses it.
type Tool struct {
	Name         string          `json:"name"`
	Title        *string         `json:"title,omitempty"`
	Description  *string         `json:"description,omitempty"`
	InputSchema  json.RawMessage `json:"inputSchema"`
	OutputSchema json.RawMessage `json:"outputSchema,omitempty"`
	Meta         json.RawMessage `json:"_meta,omitempty"`
}

// Resource is the MCP wire shape of a single resource entry.
type Resource struct {
	URI         string  `json:"uri"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	MimeType    *string `json:"mimeType,omitempty"`
}

// ResourceTemplate is the MCP wire shape of a parameterized resource URI.
type ResourceTemplate struct {
	URITemplate string  `json:"uriTemplate"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	MimeType    *string `json:"mimeType,omitempty"`
}

// PromptArgument describes one named argument a Prompt accepts.
type PromptArgument struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
}

// Prompt is the MCP wire shape of a single prompt definition.
type Prompt struct {
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// PromptMessage is one message in a GetPromptResult.
type PromptMessage struct {
	Role    string       `json:"role"`
	Content ContentBlock `json:"-"`
}

// InitializeResult is the typed shape of the "initialize" response.
type InitializeResult struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    json.RawMessage `json:"capabilities"`
	ServerInfo      ClientInfo      `json:"serverInfo"`
	Instructions    string          `json:"instructions,omitempty"`
}

// NewInitializeResult builds the "initialize" ServerResult.
func NewInitializeResult(v InitializeResult) (ServerResult, error) {
	b, err := json.Marshal(v)
	return ServerResult{Body: b}, err
}

// NewEmptyResult builds the empty-object result used by ping,
// resources/subscribe, resources/unsubscribe, and logging/setLevel.
func NewEmptyResult() ServerResult { return ServerResult{Body: json.RawMessage("{}")} }

type listToolsBody struct {
	Tools      []Tool  `json:"tools"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

// NewToolsListResult builds the "tools/list" ServerResult.
func NewToolsListResult(tools []Tool, nextCursor *string) (ServerResult, error) {
	if tools == nil {
		tools = []Tool{}
	}
	b, err := json.Marshal(listToolsBody{Tools: tools, NextCursor: nextCursor})
	return ServerResult{Body: b}, err
}

type callToolBody struct {
	Content []json.RawMessage `json:"content"`
	IsError bool              `json:"isError,omitempty"`
}

// NewCallToolResult builds the "tools/call" ServerResult, draining any
// streamed content per limits.
func NewCallToolResult(content []ContentBlock, isError bool, limits StreamLimits) (ServerResult, error) {
	items := make([]json.RawMessage, 0, len(content))
	for _, c := range content {
		raw, err := c.Serialize(limits)
		if err != nil {
			return ServerResult{}, err
		}
		items = append(items, raw)
	}
	b, err := json.Marshal(callToolBody{Content: items, IsError: isError})
	return ServerResult{Body: b}, err
}

type listResourcesBody struct {
	Resources  []Resource `json:"resources"`
	NextCursor *string    `json:"nextCursor,omitempty"`
}

// NewResourcesListResult builds the "resources/list" ServerResult.
func NewResourcesListResult(resources []Resource, nextCursor *string) (ServerResult, error) {
	if resources == nil {
		resources = []Resource{}
	}
	b, err := json.Marshal(listResourcesBody{Resources: resources, NextCursor: nextCursor})
	return ServerResult{Body: b}, err
}

type readResourceBody struct {
	Contents []json.RawMessage `json:"contents"`
}

// NewResourcesReadResult builds the "resources/read" ServerResult from a
// set of EmbeddedResource-shaped content blocks.
func NewResourcesReadResult(resources []ResourceContents, limits StreamLimits) (ServerResult, error) {
	items := make([]json.RawMessage, 0, len(resources))
	for _, rc := range resources {
		cb := ContentBlock{Kind: ContentEmbeddedResource, Resource: rc}
		raw, err := cb.Serialize(limits)
		if err != nil {
			return ServerResult{}, err
		}
		var wrapper struct {
			Resource json.RawMessage `json:"resource"`
		}
		if err := json.Unmarshal(raw, &struct {
			Resource *json.RawMessage `json:"resource"`
		}{&wrapper.Resource}); err != nil {
			return ServerResult{}, err
		}
		items = append(items, wrapper.Resource)
	}
	b, err := json.Marshal(readResourceBody{Contents: items})
	return ServerResult{Body: b}, err
}

type listResourceTemplatesBody struct {
	ResourceTemplates []ResourceTemplate `json:"resourceTemplates"`
	NextCursor        *string            `json:"nextCursor,omitempty"`
}

// NewResourceTemplatesListResult builds the "resources/templates/list"
// ServerResult.
func NewResourceTemplatesListResult(templates []ResourceTemplate, nextCursor *string) (ServerResult, error) {
	if templates == nil {
		templates = []ResourceTemplate{}
	}
	b, err := json.Marshal(listResourceTemplatesBody{ResourceTemplates: templates, NextCursor: nextCursor})
	return ServerResult{Body: b}, err
}

type listPromptsBody struct {
	Prompts    []Prompt `json:"prompts"`
	NextCursor *string  `json:"nextCursor,omitempty"`
}

// NewPromptsListResult builds the "prompts/list" ServerResult.
func NewPromptsListResult(prompts []Prompt, nextCursor *string) (ServerResult, error) {
	if prompts == nil {
		prompts = []Prompt{}
	}
	b, err := json.Marshal(listPromptsBody{Prompts: prompts, NextCursor: nextCursor})
	return ServerResult{Body: b}, err
}

type getPromptBody struct {
	Description *string           `json:"description,omitempty"`
	Messages    []json.RawMessage `json:"messages"`
}

// NewGetPromptResult builds the "prompts/get" ServerResult.
func NewGetPromptResult(description *string, messages []PromptMessage, limits StreamLimits) (ServerResult, error) {
	items := make([]json.RawMessage, 0, len(messages))
	for _, m := range messages {
		content, err := m.Content.Serialize(limits)
		if err != nil {
			return ServerResult{}, err
		}
		raw, err := json.Marshal(struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		}{m.Role, content})
		if err != nil {
			return ServerResult{}, err
		}
		items = append(items, raw)
	}
	b, err := json.Marshal(getPromptBody{Description: description, Messages: items})
	return ServerResult{Body: b}, err
}

// Completion is the "completion/complete" result payload.
type Completion struct {
	Values  []string `json:"values"`
	Total   *int     `json:"total,omitempty"`
	HasMore *bool    `json:"hasMore,omitempty"`
}

type completeBody struct {
	Completion Completion `json:"completion"`
}

// NewCompleteResult builds the "completion/complete" ServerResult.
func NewCompleteResult(c Completion) (ServerResult, error) {
	b, err := json.Marshal(completeBody{Completion: c})
	return ServerResult{Body: b}, err
}

package descriptions

// Tool descriptions with practical examples and use cases

const (
	EADExtractFileDescription = `Extract the register fields from one Romanian export declaration (EAD) PDF.

**When to use:** A single customs declaration needs to be turned into a register row.

**Returns:** A JSON record with file, date (DD-MM), mrn, transport_document, exporter, pieces, gross_weight and goods_description. Fields that could not be found are null. An unreadable file yields a record carrying an error message instead of fields.

**Examples:**
• "Extract the fields from declaratii/EAD_2025_0912.pdf"
• "What is the MRN and gross weight in export-claim.pdf?"

**Best practices:** Run ead_validate_file first when the file comes from an unknown source.`

	EADExtractDirectoryDescription = `Extract every export declaration PDF below a directory.

**When to use:** A whole folder of declarations has to be processed in one go, for example the monthly batch of a customs broker.

**Returns:** A JSON array of records in sorted file order. Files that fail carry an error and do not stop the batch.

**Examples:**
• "Extract all declarations in /data/ead/2025-09"
• "Process the configured directory and summarize exporters"

**Best practices:** Use ead_search_directory to preview which files will be processed.`

	EADValidateFileDescription = `Verify that a file is a readable PDF before extraction.

**When to use:** Before extracting from files of unknown origin or when a batch reports errors.

**Returns:** valid, size, page count and a message explaining why validation failed.

**Examples:**
• "Is scan-0042.pdf a readable PDF?"
• "Check why declaratie.pdf fails extraction"`

	EADSearchDirectoryDescription = `List PDF files in a directory tree with optional fuzzy file name search.

**When to use:** Finding declarations by file name before extracting them.

**Examples:**
• "List all PDFs in the configured directory"
• "Find declarations with 'alfa' in the file name"

**Best practices:** Leave query empty to list every PDF.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"ead_extract_file":      EADExtractFileDescription,
	"ead_extract_directory": EADExtractDirectoryDescription,
	"ead_validate_file":     EADValidateFileDescription,
	"ead_search_directory":  EADSearchDirectoryDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}

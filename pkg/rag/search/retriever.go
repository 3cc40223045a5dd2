package search

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"ai-knowledge-be/internal/constant"
	"ai-knowledge-be/pkg/embedding"
	"ai-knowledge-be/pkg/llm"
	"ai-knowledge-be/pkg/vectorstore"
)

const (
	// candidateChunkBudget caps how much of each chunk the selection prompt sees
	candidateChunkBudget = 300
	// chunksPerCandidate is how many representative chunks each candidate shows
	chunksPerCandidate = 3
	// maxSelectedDocuments bounds how many documents the model may pick
	maxSelectedDocuments = 2
	// chunksPerSelectedDocument is how many top chunks a chosen document expands to
	chunksPerSelectedDocument = 3
)

// Retriever searches the relevant collections, groups hits by source
// document and asks the model to pick the 1-2 most relevant documents.
type Retriever struct {
	index       vectorstore.Index
	embedder    embedding.EmbeddingProvider
	llmProvider llm.LLMProvider
	naming      vectorstore.Naming
	topK        int
	logger      *log.Logger
}

// NewRetriever creates a new retriever
func NewRetriever(
	index vectorstore.Index,
	embedder embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	naming vectorstore.Naming,
	topK int,
	logger *log.Logger,
) *Retriever {
	if topK <= 0 {
		topK = 10
	}
	return &Retriever{
		index:       index,
		embedder:    embedder,
		llmProvider: llmProvider,
		naming:      naming,
		topK:        topK,
		logger:      logger,
	}
}

// Retrieve returns the ordered list of formatted context strings for the
// question. When nothing relevant is found it returns the single no-match
// marker, never an empty list and never unranked raw chunks.
func (r *Retriever) Retrieve(ctx context.Context, question string, departmentId *int, docFilter []string) ([]string, error) {
	collections, err := r.resolveCollections(ctx, departmentId, docFilter)
	if err != nil {
		return nil, err
	}

	embeddingRes, err := r.embedder.Generate(question, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	vector := embeddingRes.Embedding.Values

	chunks := r.searchCollections(ctx, collections, vector, docFilter)
	if len(chunks) == 0 {
		r.logger.Printf("[SEARCH] No chunks returned from %d collections", len(collections))
		return []string{constant.NoRelevantInfoMarker}, nil
	}

	candidates := groupByDocument(chunks)
	r.logger.Printf("[SEARCH] %d chunks grouped into %d candidate documents", len(chunks), len(candidates))

	selected, err := r.selectDocuments(ctx, question, candidates)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		r.logger.Printf("[SEARCH] Model selected no valid document, returning no-match marker")
		return []string{constant.NoRelevantInfoMarker}, nil
	}

	var contexts []string
	for _, doc := range selected {
		top := doc.Chunks
		if len(top) > chunksPerSelectedDocument {
			top = top[:chunksPerSelectedDocument]
		}
		for _, chunk := range top {
			contexts = append(contexts, FormatContext(chunk))
		}
	}

	return contexts, nil
}

// resolveCollections builds the search set: the department's own collection,
// the shared collection, and any extra collections owning explicitly
// filtered documents.
func (r *Retriever) resolveCollections(ctx context.Context, departmentId *int, docFilter []string) ([]string, error) {
	seen := make(map[string]bool)
	var collections []string

	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			collections = append(collections, name)
		}
	}

	if departmentId != nil {
		add(r.naming.DepartmentCollection(*departmentId))
	}
	add(r.naming.CommonCollection())

	if len(docFilter) > 0 {
		extra, err := r.index.CollectionsForFiles(ctx, docFilter)
		if err != nil {
			// The two base collections are still searchable
			r.logger.Printf("[SEARCH] Collection lookup for document filter failed: %v", err)
		}
		for _, name := range extra {
			add(name)
		}
	}

	return collections, nil
}

// searchCollections fans out one similarity search per collection (and per
// filtered document name) and joins the results. A failing collection is
// logged and skipped, never fatal.
func (r *Retriever) searchCollections(ctx context.Context, collections []string, vector []float32, docFilter []string) []vectorstore.ScoredChunk {
	filters := []string{""}
	if len(docFilter) > 0 {
		filters = docFilter
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		joined []vectorstore.ScoredChunk
	)

	for _, collection := range collections {
		for _, filter := range filters {
			wg.Add(1)
			go func(collection, filter string) {
				defer wg.Done()

				hits, err := r.index.Search(ctx, collection, vector, r.topK, filter)
				if err != nil {
					r.logger.Printf("[SEARCH] Collection %s search failed, skipping: %v", collection, err)
					return
				}

				mu.Lock()
				joined = append(joined, hits...)
				mu.Unlock()
			}(collection, filter)
		}
	}
	wg.Wait()

	return joined
}

// CandidateDocument is all retrieved chunks of one source file, best first
type CandidateDocument struct {
	FileName string
	Chunks   []vectorstore.ScoredChunk
}

func (d CandidateDocument) bestScore() float64 {
	if len(d.Chunks) == 0 {
		return 0
	}
	return d.Chunks[0].Score
}

// groupByDocument merges chunks across collections by source file name and
// orders candidates by their best chunk score.
func groupByDocument(chunks []vectorstore.ScoredChunk) []CandidateDocument {
	byFile := make(map[string][]vectorstore.ScoredChunk)
	for _, chunk := range chunks {
		name := chunk.Payload.OriginalFileName
		byFile[name] = append(byFile[name], chunk)
	}

	candidates := make([]CandidateDocument, 0, len(byFile))
	for name, group := range byFile {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Score > group[j].Score
		})
		candidates = append(candidates, CandidateDocument{FileName: name, Chunks: group})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].bestScore() != candidates[j].bestScore() {
			return candidates[i].bestScore() > candidates[j].bestScore()
		}
		return candidates[i].FileName < candidates[j].FileName
	})

	return candidates
}

// selectDocuments asks the model to name the most relevant 1-2 documents by
// index. Invalid or missing selections yield an empty result; the caller
// turns that into the explicit no-match marker rather than silently falling
// back to top-scored chunks.
func (r *Retriever) selectDocuments(ctx context.Context, question string, candidates []CandidateDocument) ([]CandidateDocument, error) {
	prompt := buildSelectionPrompt(question, candidates)

	response, err := r.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return nil, fmt.Errorf("document selection failed: %w", err)
	}

	indices := parseSelection(response, len(candidates))

	selected := make([]CandidateDocument, 0, len(indices))
	for _, idx := range indices {
		selected = append(selected, candidates[idx])
		r.logger.Printf("[SEARCH] Selected document %d: %s", idx+1, candidates[idx].FileName)
	}
	return selected, nil
}

func buildSelectionPrompt(question string, candidates []CandidateDocument) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("Below is a list of candidate documents with excerpts. Name the documents that contain the answer to the question.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<candidates>\n")
	for i, doc := range candidates {
		prompt.WriteString(fmt.Sprintf("%d. %s\n", i+1, doc.FileName))
		excerpts := doc.Chunks
		if len(excerpts) > chunksPerCandidate {
			excerpts = excerpts[:chunksPerCandidate]
		}
		for _, chunk := range excerpts {
			prompt.WriteString("   - ")
			prompt.WriteString(truncate(chunk.Text, candidateChunkBudget))
			prompt.WriteString("\n")
		}
	}
	prompt.WriteString("</candidates>\n\n")

	prompt.WriteString("<question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</question>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with the numbers of at most 2 relevant documents, comma separated (e.g. \"1\" or \"1,3\").\n")
	prompt.WriteString("If NO document is relevant, respond with exactly: NONE\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

// parseSelection extracts up to maxSelectedDocuments valid 1-based indices
// from the model response.
func parseSelection(response string, candidateCount int) []int {
	cleaned := strings.ToUpper(strings.TrimSpace(response))
	if cleaned == "" || strings.Contains(cleaned, "NONE") {
		return nil
	}

	seen := make(map[int]bool)
	var indices []int

	for _, field := range strings.FieldsFunc(cleaned, func(r rune) bool {
		return r < '0' || r > '9'
	}) {
		var idx int
		if _, err := fmt.Sscanf(field, "%d", &idx); err != nil {
			continue
		}
		if idx < 1 || idx > candidateCount || seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, idx-1)
		if len(indices) == maxSelectedDocuments {
			break
		}
	}

	return indices
}

// FormatContext renders one chunk as "[section-path | title] (source: file)"
// followed by the text. The title is collapsed when it duplicates the last
// segment of the section path.
func FormatContext(chunk vectorstore.ScoredChunk) string {
	header := chunk.Payload.HierarchyPath
	title := chunk.Payload.Title

	if title != "" && title != lastSegment(header) {
		if header != "" {
			header = header + " | " + title
		} else {
			header = title
		}
	}

	return fmt.Sprintf("[%s] (source: %s)\n%s", header, chunk.Payload.OriginalFileName, chunk.Text)
}

func lastSegment(path string) string {
	sep := ">"
	if !strings.Contains(path, sep) {
		sep = "/"
	}
	parts := strings.Split(path, sep)
	return strings.TrimSpace(parts[len(parts)-1])
}

func truncate(text string, budget int) string {
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	return string(runes[:budget]) + "..."
}

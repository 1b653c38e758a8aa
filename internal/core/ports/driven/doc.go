// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - TextGenerator: Language model inference (Ollama, OpenAI-compatible)
//   - TextEmbedder: Vector embeddings for chunks and questions
//   - TextExtractor: Page text from uploaded documents (PDF, plain text)
//   - TextSplitter: Boundary-aware chunking of page text
//   - VectorIndex: In-memory similarity search over one document
//   - IndexStore: On-disk persistence of a VectorIndex (SQLite)
//   - ConfigStore: Application configuration (TOML)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PromptStore: User-editable prompt templates. Without it the built-in template is used.
//   - Metrics: Instrumentation sink. Without it nothing is recorded.
//   - MemoryProbe: Process memory reader for the background sampler.
//   - AIConfigValidator: Connectivity check behind `ragserve config check`.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

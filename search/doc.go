// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search retrieves passages for a question and filters them by score.
//
// Searcher issues one request to a Client and keeps the results that clear
// the minimum search score and, when present, the minimum reranker score. It
// never reorders what the client returned. SourcesContent renders the kept
// results as the "source: text" lines given to the model.
//
// LocalIndex is a Client over a storage.PassageRepository. It ranks passages
// by BM25 for text queries and by embedding similarity for vector queries,
// fuses both with reciprocal rank fusion in hybrid mode, and can rerank and
// caption results with a lexical semantic ranker that scores from 0 to 4.
package search

// Package ocr adapts text recognition engines to the hierarchical
// recognizer contract of package textmodel.
//
// Two engines are provided:
//
//   - Tesseract (via gosseract/v2) runs locally. Word boxes carry block,
//     paragraph and line numbers, which are regrouped into blocks, lines,
//     words and symbols. Tesseract reports axis-aligned boxes only, so the
//     corners of every node are its box corners.
//   - Vision calls Google Cloud Vision DOCUMENT_TEXT_DETECTION. Its pages,
//     blocks, paragraphs, words and symbols map onto blocks, lines,
//     elements and symbols; bounding polygons become corners.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr
//   - macOS: brew install tesseract
//   - Windows: Download from https://github.com/UB-Mannheim/tesseract/wiki
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// Vision needs Google Cloud credentials, either application default
// credentials or a service-account file.
//
// # Supported Languages
//
// Languages are given as Tesseract codes ("eng", "deu", "chi_sim").
// Vision receives the equivalent BCP 47 tag as a language hint.
//
// # Preprocessing
//
// WithPreprocessing wraps any Recognizer with grayscale conversion and a
// contrast boost, which helps Tesseract on low-contrast photos.
//
// # Error Handling
//
// Recognizers return errors for engine initialization failures, unsupported
// languages and transport errors. Nodes without usable geometry are not
// errors; textmodel drops them when building the document.
package ocr

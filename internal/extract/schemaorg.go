package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"prodfact/internal/model"
	"prodfact/internal/normalize"
)

// extractProductMarkup parses embedded schema.org Product blocks
// (JSON-LD). Because the source itself asserts the structure, these become
// spec/feature claims directly, with no heuristic filtering.
func extractProductMarkup(doc *html.Node, sourceURL string) []model.Claim {
	var claims []model.Claim

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" && attrVal(n, "type") == "application/ld+json" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				claims = append(claims, parseJSONLD(n.FirstChild.Data, sourceURL)...)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return claims
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// parseJSONLD decodes one JSON-LD block and harvests every Product object
// in it (top level, arrays, or @graph).
func parseJSONLD(raw, sourceURL string) []model.Claim {
	var root interface{}
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return nil
	}

	var claims []model.Claim
	var visit func(v interface{})
	visit = func(v interface{}) {
		switch t := v.(type) {
		case []interface{}:
			for _, item := range t {
				visit(item)
			}
		case map[string]interface{}:
			if isProduct(t) {
				claims = append(claims, productClaims(t, sourceURL)...)
			}
			if graph, ok := t["@graph"]; ok {
				visit(graph)
			}
		}
	}
	visit(root)
	return claims
}

func isProduct(obj map[string]interface{}) bool {
	switch t := obj["@type"].(type) {
	case string:
		return t == "Product"
	case []interface{}:
		for _, v := range t {
			if s, ok := v.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

// productClaims extracts additionalProperty name/value pairs and feature
// lists from one Product object.
func productClaims(obj map[string]interface{}, sourceURL string) []model.Claim {
	var claims []model.Claim

	add := func(key, value, snippet string, kind model.ClaimKind) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		claims = append(claims, model.Claim{
			Key:     key,
			Value:   value,
			Kind:    kind,
			Source:  sourceURL,
			Snippet: snippet,
		})
	}

	if props, ok := obj["additionalProperty"].([]interface{}); ok {
		for _, p := range props {
			prop, ok := p.(map[string]interface{})
			if !ok {
				continue
			}
			name := stringVal(prop["name"])
			value := quantValue(prop)
			if name == "" || value == "" {
				continue
			}
			add(normalize.Key(name), value, "schema.org additionalProperty "+name, model.KindSpec)
		}
	}

	// Direct product properties that map onto our attribute keys.
	if w := quantValue(map[string]interface{}{"value": obj["weight"]}); w != "" {
		add("weight", w, "schema.org weight", model.KindSpec)
	}
	if m := stringVal(obj["material"]); m != "" {
		add("material", m, "schema.org material", model.KindSpec)
	}

	// Feature lists appear as featureList or as a bullet-ish description.
	switch t := obj["featureList"].(type) {
	case string:
		add("feature", t, "schema.org featureList", model.KindFeature)
	case []interface{}:
		for _, f := range t {
			if s, ok := f.(string); ok {
				add("feature", s, "schema.org featureList", model.KindFeature)
			}
		}
	}

	return claims
}

// quantValue renders a property value that may be a string, a number, or a
// schema.org QuantitativeValue {value, unitText}.
func quantValue(prop map[string]interface{}) string {
	switch v := prop["value"].(type) {
	case string:
		return v
	case float64:
		if unit := stringVal(prop["unitText"]); unit != "" {
			return trimFloat(v) + " " + unit
		}
		return trimFloat(v)
	case map[string]interface{}:
		inner := stringVal(v["value"])
		if inner == "" {
			if f, ok := v["value"].(float64); ok {
				inner = trimFloat(f)
			}
		}
		if inner == "" {
			return ""
		}
		if unit := stringVal(v["unitText"]); unit != "" {
			return inner + " " + unit
		}
		return inner
	}
	return ""
}

func stringVal(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return s
}

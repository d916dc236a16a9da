// Package domain contains the core business entities, value objects, and
// domain logic of the learner memory engine. It represents the heart of the
// system, independent of any specific infrastructure or delivery mechanism.
package domain

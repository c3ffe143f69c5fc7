// Package fuzzy implements a small Mamdani fuzzy inference engine.
//
// A model is built from linguistic variables (DefineVariable), a rule base
// (NewRuleBase) and a score classifier (NewClassifier), usually assembled in one
// step with NewSystem. Evaluation uses minimum for AND and implication, maximum for OR
// and aggregation, and a discretised centroid (or bisector, mean/smallest/largest of
// maximum) for defuzzification.
//
// Everything is validated at construction time. Once a System exists, inference is a
// pure function of its inputs and never fails on well-formed input, except when the
// no-activation policy is PolicyError and no rule fires.
package fuzzy

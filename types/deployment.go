package types

import (
	"fmt"
	"slices"
)

// Environment is the kind of zone an application is deployed to.
type Environment string

// Known environments.
const (
	EnvironmentProd    Environment = "prod"
	EnvironmentStaging Environment = "staging"
	EnvironmentPerf    Environment = "perf"
	EnvironmentTest    Environment = "test"
	EnvironmentDev     Environment = "dev"
)

// IsProduction reports whether the environment serves production traffic.
func (e Environment) IsProduction() bool {
	return e == EnvironmentProd
}

// Zone is a deployment target declared by an instance.
type Zone struct {
	Environment Environment `json:"environment" yaml:"environment"`
	// Region is optional for non-production environments.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}

// Endpoint is a modern multi-endpoint declaration.
type Endpoint struct {
	// EndpointID names the endpoint; unique within an instance.
	EndpointID EndpointID `json:"endpointId" yaml:"id"`

	// ContainerID is the container cluster serving the endpoint.
	ContainerID ClusterID `json:"containerId" yaml:"containerId"`

	// Regions lists the regions the endpoint routes to.
	Regions []string `json:"regions" yaml:"regions"`
}

// InstanceSpec is the deployment declaration of a single instance.
//
// An instance declares its rotations either through the legacy
// GlobalServiceID form or through Endpoints, never both.
type InstanceSpec struct {
	// Name is the instance name.
	Name string `json:"name" yaml:"name"`

	// GlobalServiceID is the legacy single-endpoint declaration, naming the
	// container cluster behind the rotation.
	GlobalServiceID string `json:"globalServiceId,omitempty" yaml:"globalServiceId,omitempty"`

	// Zones lists the zones the instance is deployed to.
	Zones []Zone `json:"zones" yaml:"zones"`

	// Endpoints lists the modern endpoint declarations, in declaration order.
	Endpoints []Endpoint `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
}

// UsesGlobalServiceID reports whether the legacy declaration is present.
func (s InstanceSpec) UsesGlobalServiceID() bool {
	return s.GlobalServiceID != ""
}

// ProductionRegions returns the distinct regions of production zones, sorted.
func (s InstanceSpec) ProductionRegions() []string {
	regions := make([]string, 0, len(s.Zones))
	for _, z := range s.Zones {
		if z.Environment.IsProduction() && z.Region != "" {
			regions = append(regions, z.Region)
		}
	}

	return normalizeRegions(regions)
}

// DeploymentSpec is the parsed deployment declaration of an application.
type DeploymentSpec struct {
	Instances []InstanceSpec `json:"instances" yaml:"instances"`
}

// Instance returns the spec of the named instance.
func (d DeploymentSpec) Instance(name string) (InstanceSpec, bool) {
	idx := slices.IndexFunc(d.Instances, func(s InstanceSpec) bool { return s.Name == name })
	if idx < 0 {
		return InstanceSpec{}, false
	}

	return d.Instances[idx], true
}

// RequireInstance returns the spec of the named instance or a configuration error.
func (d DeploymentSpec) RequireInstance(name string) (InstanceSpec, error) {
	spec, ok := d.Instance(name)
	if !ok {
		return InstanceSpec{}, &ConfigurationError{
			Subject: fmt.Sprintf("instance '%s'", name),
			Reason:  "not declared in deployment spec",
		}
	}

	return spec, nil
}
